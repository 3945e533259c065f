package model

import (
	"gateless/pkg/config"
	"time"
)

// Booking holds one reservation of a single spot. The window
// [StartTime, EndTime) is fixed at creation; edits are modeled as
// cancel-and-recreate by the caller, never as in-place window changes.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	LocationID  string    `json:"location_id" bson:"location_id" validate:"required,mongodb"`
	UserID      string    `json:"user_id" bson:"user_id" validate:"required,min=1,max=100"`
	BookingDate time.Time `json:"booking_date" bson:"booking_date" validate:"omitempty"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	// TimeOffset is the requester's UTC offset in minutes at creation time,
	// kept so dashboards can render the window in the driver's local clock.
	TimeOffset int     `json:"time_offset" bson:"time_offset" validate:"omitempty"`
	Plate      string  `json:"plate" bson:"plate" validate:"required,min=2,max=16"`
	Phone      string  `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Amount     float64 `json:"amount" bson:"amount" validate:"min=0"`

	Status config.BookingStatus `json:"status" bson:"status" validate:"omitempty,oneof=pending booked cancelled"`

	// PaymentSessionID is the correlation handle of the external checkout
	// session. Present only on paid bookings.
	PaymentSessionID string `json:"payment_session_id,omitempty" bson:"payment_session_id,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Overlaps reports whether two half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap, so a booking
// ending at 10:00 does not conflict with one starting at 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// CanTransition reports whether a booking status change is legal.
// Cancelled is the only absorbing state; booked may still be cancelled.
func CanTransition(from, to config.BookingStatus) bool {
	switch from {
	case config.Pending:
		return to == config.Booked || to == config.Cancelled
	case config.Booked:
		return to == config.Cancelled
	default:
		return false
	}
}
