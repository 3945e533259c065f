package config

// BookingStatus is the persisted lifecycle state of a booking. A booking is
// created pending, becomes booked on free checkout or payment confirmation,
// and cancelled is the only absorbing state.
type BookingStatus string

const (
	Pending   BookingStatus = "pending"
	Booked    BookingStatus = "booked"
	Cancelled BookingStatus = "cancelled"
)

// LocationStatus is the operator-controlled visibility of a parking location.
// Full is never persisted; it is derived at search time when the remaining
// capacity for the requested window drops to zero.
type LocationStatus string

const (
	Available    LocationStatus = "available"
	NotAvailable LocationStatus = "notavailable"
	Full         LocationStatus = "full"
)

// CreatePolicy selects how strictly booking creation guards the capacity
// invariant. BestEffort relies on the availability check done at search time.
// SerializePerLocation takes an advisory lock per location and re-counts
// overlapping bookings transactionally before inserting.
type CreatePolicy string

const (
	BestEffort           CreatePolicy = "best-effort"
	SerializePerLocation CreatePolicy = "per-location"
)
