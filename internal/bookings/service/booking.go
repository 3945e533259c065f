package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	bookingserrors "gateless/internal/bookings/errors"
	"gateless/internal/bookings/repository"
	"gateless/internal/bookings/validator"
	locationserrors "gateless/internal/locations/errors"
	"gateless/pkg/config"
	apperrors "gateless/pkg/errors"
	"gateless/pkg/model"
	"gateless/pkg/notify"
	"gateless/pkg/payment"
	"gateless/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// Reconcile outcomes reported by the payment provider.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// notificationFailedMsg flags a confirmed booking whose confirmation message
// could not be published. The booking itself is never rolled back for this.
const notificationFailedMsg = "Booking confirmed but the confirmation message could not be sent"

// LocationGetter is the slice of the locations repository this service needs.
type LocationGetter interface {
	FindByID(ctx context.Context, id string) (*model.ParkingLocation, error)
}

// CreateResult is the outcome of a booking request. PaymentRedirect is set
// only for paid bookings, which stay pending until the payment reconciles.
// NotificationError reports a confirmation publish failure without failing
// the booking itself.
type CreateResult struct {
	Booking           *model.Booking `json:"booking"`
	PaymentRedirect   string         `json:"payment_redirect,omitempty"`
	NotificationError string         `json:"notification_error,omitempty"`
}

// ReconcileResult is the outcome of a payment reconciliation. Like
// CreateResult, NotificationError flags a failed confirmation publish without
// failing the settled booking.
type ReconcileResult struct {
	Booking           *model.Booking `json:"booking"`
	NotificationError string         `json:"notification_error,omitempty"`
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) (*CreateResult, error)
	Reconcile(ctx context.Context, bookingID string, outcome string) (*ReconcileResult, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListForDay(ctx context.Context, locationID string, day time.Time, status config.BookingStatus) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	locations LocationGetter
	validator *validator.BookingValidator
	payments  payment.Provider
	notifier  notify.Gateway
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	locations LocationGetter,
	validator *validator.BookingValidator,
	payments payment.Provider,
	notifier notify.Gateway,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		locations: locations,
		validator: validator,
		payments:  payments,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) (*CreateResult, error) {
	s.applyDefaults(booking)
	if err := s.sanitize(booking); err != nil {
		return nil, err
	}
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	location, err := s.lookupLocation(ctx, booking.LocationID)
	if err != nil {
		return nil, err
	}
	if location.Status == config.NotAvailable {
		return nil, apperrors.Conflict("Location is not accepting bookings")
	}

	booking.Amount = computeAmount(booking.StartTime, booking.EndTime, location.PricePerHour)

	switch s.cfg.BookingCreatePolicy {
	case config.SerializePerLocation:
		err = s.createSerialized(ctx, booking, location)
	default:
		err = s.createBestEffort(ctx, booking, location)
	}
	if err != nil {
		return nil, err
	}

	if location.Free() {
		return s.completeFreeBooking(ctx, booking, location)
	}
	return s.openPaymentSession(ctx, booking, location)
}

// createBestEffort checks capacity then inserts without any serialization.
// Two racing requests can both pass the check; the winner is whoever the
// operator refunds, not this service.
func (s *bookingService) createBestEffort(ctx context.Context, booking *model.Booking, location *model.ParkingLocation) error {
	if err := s.verifyCapacity(ctx, booking, location); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"location_id", booking.LocationID,
		"start_time", booking.StartTime,
		"policy", config.BestEffort,
	)
	return nil
}

// createSerialized takes an advisory lock on the location, then re-checks
// capacity and inserts inside one transaction, so concurrent requests for
// the same location cannot both pass the capacity check.
func (s *bookingService) createSerialized(ctx context.Context, booking *model.Booking, location *model.ParkingLocation) error {
	lockID, err := s.acquireSlotLock(ctx, booking.LocationID, booking.UserID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyCapacity(sessCtx, booking, location); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "location_id", booking.LocationID, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"location_id", booking.LocationID,
		"start_time", booking.StartTime,
		"policy", config.SerializePerLocation,
	)
	return nil
}

func (s *bookingService) completeFreeBooking(ctx context.Context, booking *model.Booking, location *model.ParkingLocation) (*CreateResult, error) {
	swapped, err := s.repo.CompareAndSetStatus(ctx, booking.ID, config.Pending, config.Booked)
	if err != nil {
		s.cfg.Log.Error("Failed to confirm free booking", "id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to confirm booking", err)
	}
	if !swapped {
		// The booking was touched between insert and confirm, which only a
		// concurrent cancel can do. Report its current state.
		return nil, apperrors.Conflict("Booking was modified before confirmation")
	}
	booking.Status = config.Booked

	result := &CreateResult{Booking: booking}
	if err := s.sendConfirmation(ctx, booking, location); err != nil {
		result.NotificationError = notificationFailedMsg
	}

	s.cfg.Log.Info("Free booking confirmed", "id", booking.ID)
	return result, nil
}

func (s *bookingService) openPaymentSession(ctx context.Context, booking *model.Booking, location *model.ParkingLocation) (*CreateResult, error) {
	session, err := s.payments.CreateSession(ctx, payment.SessionRequest{
		BookingID:   booking.ID,
		Amount:      booking.Amount,
		Currency:    s.cfg.PaymentCurrency,
		Description: fmt.Sprintf("Parking at %s (%s)", location.Name, location.StreetAddress()),
		SuccessURL:  s.cfg.CheckoutSuccessURL,
		CancelURL:   s.cfg.CheckoutCancelURL,
	})
	if err != nil {
		// The pending booking survives; the caller may retry through the
		// reconcile path or cancel it.
		s.cfg.Log.Error("Failed to open payment session", "id", booking.ID, "error", err)
		return nil, err
	}

	if err := s.repo.SetPaymentSession(ctx, booking.ID, session.ID); err != nil {
		s.cfg.Log.Error("Failed to attach payment session", "id", booking.ID, "session_id", session.ID, "error", err)
		return nil, apperrors.Internal("Failed to attach payment session", err)
	}
	booking.PaymentSessionID = session.ID

	s.cfg.Log.Info("Payment session opened",
		"id", booking.ID,
		"session_id", session.ID,
		"amount", booking.Amount,
	)
	return &CreateResult{Booking: booking, PaymentRedirect: session.RedirectURL}, nil
}

// Reconcile applies the payment outcome the provider reported for a booking.
// The transition runs as a conditional write, so concurrent reconciles for
// the same booking settle it exactly once; the losers observe the already
// settled state and report accordingly.
func (s *bookingService) Reconcile(ctx context.Context, bookingID string, outcome string) (*ReconcileResult, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	switch outcome {
	case OutcomeSuccess:
	case OutcomeFailure:
		// A failed or abandoned checkout leaves the booking pending; the
		// driver can retry payment or cancel it.
		booking, err := s.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		s.cfg.Log.Info("Payment failure reported, booking unchanged",
			"id", bookingID, "status", booking.Status)
		return &ReconcileResult{Booking: booking}, nil
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown payment outcome: %s", outcome))
	}

	// Only a pending booking can settle; a cancelled one must never
	// resurrect, and a booked one is already settled.
	swapped, err := s.repo.CompareAndSetStatus(ctx, bookingID, config.Pending, config.Booked)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to reconcile booking", "id", bookingID, "outcome", outcome, "error", err)
		return nil, apperrors.Internal("Failed to reconcile booking", err)
	}

	booking, getErr := s.GetByID(ctx, bookingID)
	if getErr != nil {
		return nil, getErr
	}

	if !swapped {
		if booking.Status == config.Booked {
			// A concurrent reconcile already settled this booking.
			s.cfg.Log.Info("Reconcile was a no-op", "id", bookingID, "status", booking.Status)
			return &ReconcileResult{Booking: booking}, nil
		}
		return nil, apperrors.Conflict(fmt.Sprintf(
			"Booking is %s and cannot be confirmed", booking.Status))
	}

	result := &ReconcileResult{Booking: booking}
	if location, lookupErr := s.lookupLocation(ctx, booking.LocationID); lookupErr == nil {
		if err := s.sendConfirmation(ctx, booking, location); err != nil {
			result.NotificationError = notificationFailedMsg
		}
	} else {
		s.cfg.Log.Warn("Skipping confirmation, location lookup failed",
			"id", bookingID, "location_id", booking.LocationID, "error", lookupErr)
		result.NotificationError = notificationFailedMsg
	}

	s.cfg.Log.Info("Booking reconciled", "id", bookingID, "outcome", outcome, "status", booking.Status)
	return result, nil
}

// Cancel moves a booking to cancelled and zeroes its amount. A missing or
// already cancelled booking reports not found rather than silently succeeding.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	swapped, err := s.repo.CancelByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	booking, getErr := s.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	if !swapped {
		return nil, apperrors.NotFound("Active booking")
	}

	s.cfg.Log.Info("Booking cancelled", "id", id)
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted", "id", id)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

// ListForDay returns the bookings at a location whose booking date falls on
// the given UTC calendar day, ordered by start time. An empty status lists
// every booking regardless of state.
func (s *bookingService) ListForDay(ctx context.Context, locationID string, day time.Time, status config.BookingStatus) ([]*model.Booking, error) {
	if locationID == "" {
		return nil, apperrors.InvalidInput("Location ID cannot be empty")
	}
	if day.IsZero() {
		return nil, apperrors.InvalidInput("Date is required")
	}
	switch status {
	case "", config.Pending, config.Booked, config.Cancelled:
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown booking status: %s", status))
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	bookings, err := s.repo.FindByLocationAndDate(ctx, locationID, dayStart, dayEnd, status)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings for day",
			"location_id", locationID,
			"date", dayStart.Format("2006-01-02"),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to list bookings", err)
	}

	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = config.Pending
	}
	if b.BookingDate.IsZero() {
		b.BookingDate = b.StartTime
	}
}

func (s *bookingService) sanitize(b *model.Booking) error {
	b.Plate = sanitizer.NormalizePlate(b.Plate)
	if b.Phone != "" {
		phone, err := sanitizer.SanitizePhone(b.Phone)
		if err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("Invalid phone number: %s", b.Phone))
		}
		b.Phone = phone
	}
	return nil
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) lookupLocation(ctx context.Context, locationID string) (*model.ParkingLocation, error) {
	location, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, locationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Location", locationID)
		}
		if errors.Is(err, locationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid location ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve location", err)
	}
	return location, nil
}

func (s *bookingService) verifyCapacity(ctx context.Context, booking *model.Booking, location *model.ParkingLocation) error {
	count, err := s.repo.CountOverlapping(ctx, booking.LocationID, booking.StartTime, booking.EndTime)
	if err != nil {
		return apperrors.Internal("Failed to check location capacity", err)
	}
	if count >= int64(location.NumberOfSpots) {
		s.cfg.Log.Warn("Location at capacity for window",
			"location_id", booking.LocationID,
			"start_time", booking.StartTime,
			"booked", count,
			"spots", location.NumberOfSpots,
		)
		return apperrors.Conflict("No spots available for the requested window")
	}
	return nil
}

// sendConfirmation publishes a confirmation event. Delivery is best effort;
// a publish failure never unwinds a confirmed booking.
func (s *bookingService) sendConfirmation(ctx context.Context, booking *model.Booking, location *model.ParkingLocation) error {
	if booking.Phone == "" {
		return nil
	}

	local := time.FixedZone("local", -booking.TimeOffset*60)
	err := s.notifier.SendConfirmation(ctx, notify.Confirmation{
		BookingID:     booking.ID,
		Phone:         booking.Phone,
		LocationName:  location.Name,
		StreetAddress: location.StreetAddress(),
		BookingDate:   booking.StartTime.In(local).Format("2006-01-02"),
		StartTime:     booking.StartTime.In(local).Format("15:04"),
		EndTime:       booking.EndTime.In(local).Format("15:04"),
		Plate:         booking.Plate,
		Amount:        booking.Amount,
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to publish booking confirmation", "id", booking.ID, "error", err)
	}
	return err
}

// computeAmount charges the window duration at the hourly rate, rounded
// half up to two decimals.
func computeAmount(start, end time.Time, pricePerHour float64) float64 {
	hours := end.Sub(start).Hours()
	return math.Round(hours*pricePerHour*100) / 100
}

// acquireSlotLock creates an advisory lock serializing creation for one
// location. Returns conflict if another request holds the lock.
func (s *bookingService) acquireSlotLock(ctx context.Context, locationID, owner string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s", locationID)

	lock := &model.SlotLock{
		ID:        lockID,
		Owner:     owner,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This location is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
