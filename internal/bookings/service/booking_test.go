package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	bookingserrors "gateless/internal/bookings/errors"
	"gateless/internal/bookings/validator"
	locationserrors "gateless/internal/locations/errors"
	"gateless/pkg/config"
	mongotx "gateless/pkg/db/mongo"
	apperrors "gateless/pkg/errors"
	"gateless/pkg/logger"
	"gateless/pkg/model"
	"gateless/pkg/notify"
	"gateless/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// In-memory repositories for testing
// ────────────────────────────────────────────────

type memBookingRepo struct {
	mu    sync.Mutex
	store map[string]*model.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{store: map[string]*model.Booking{}}
}

func (m *memBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	cp := *b
	m.store[b.ID] = &cp
	return nil
}

func (m *memBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookingRepo) CountOverlapping(ctx context.Context, locationID string, windowStart, windowEnd time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, b := range m.store {
		if b.LocationID != locationID || b.Status == config.Cancelled {
			continue
		}
		if model.Overlaps(b.StartTime, b.EndTime, windowStart, windowEnd) {
			count++
		}
	}
	return count, nil
}

func (m *memBookingRepo) CompareAndSetStatus(ctx context.Context, id string, expected, next config.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok || b.Status != expected {
		return false, nil
	}
	b.Status = next
	if next == config.Cancelled {
		b.Amount = 0
	}
	return true, nil
}

func (m *memBookingRepo) CancelByID(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok || b.Status == config.Cancelled {
		return false, nil
	}
	b.Status = config.Cancelled
	b.Amount = 0
	return true, nil
}

func (m *memBookingRepo) SetPaymentSession(ctx context.Context, id string, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.PaymentSessionID = sessionID
	return nil
}

func (m *memBookingRepo) FindByLocationAndDate(ctx context.Context, locationID string, dayStart, dayEnd time.Time, status config.BookingStatus) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.store {
		if b.LocationID != locationID {
			continue
		}
		if b.BookingDate.Before(dayStart) || b.BookingDate.After(dayEnd) {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *memBookingRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func (m *memBookingRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type memLockRepo struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{locks: map[string]struct{}{}}
}

func (m *memLockRepo) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[lock.ID]; held {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	m.locks[lock.ID] = struct{}{}
	return lock, nil
}

func (m *memLockRepo) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
}

func (m *memLockRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type mockLocations struct {
	byID map[string]*model.ParkingLocation
}

func (m *mockLocations) FindByID(ctx context.Context, id string) (*model.ParkingLocation, error) {
	l, ok := m.byID[id]
	if !ok {
		return nil, locationserrors.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

type mockPayments struct {
	mu       sync.Mutex
	requests []payment.SessionRequest
	fail     bool
}

func (m *mockPayments) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.fail {
		return nil, apperrors.Unavailable("payment service unreachable")
	}
	return &payment.Session{
		ID:          "sess_" + req.BookingID,
		RedirectURL: "https://pay.example.com/checkout/sess_" + req.BookingID,
	}, nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []notify.Confirmation
	err  error
}

func (m *mockNotifier) SendConfirmation(ctx context.Context, c notify.Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, c)
	return m.err
}

func (m *mockNotifier) Close() error { return nil }

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	freeLocationID = "64f000000000000000000001"
	paidLocationID = "64f000000000000000000002"
	tinyLocationID = "64f000000000000000000003"
)

type fixture struct {
	repo     *memBookingRepo
	locks    *memLockRepo
	payments *mockPayments
	notifier *mockNotifier
	svc      BookingService
}

func newFixture(policy config.CreatePolicy) *fixture {
	cfg := &config.Config{
		Log:                 logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		BookingCreatePolicy: policy,
		SlotLockTTL:         10 * time.Second,
		PaymentCurrency:     "NPR",
		CheckoutSuccessURL:  "https://example.com/success",
		CheckoutCancelURL:   "https://example.com/cancel",
	}

	locations := &mockLocations{byID: map[string]*model.ParkingLocation{
		freeLocationID: {
			ID:            freeLocationID,
			Name:          "Ratna Park Free Lot",
			Address:       "Ratna Park, Kathmandu",
			Position:      model.NewGeoPoint(85.3147, 27.7064),
			NumberOfSpots: 10,
			PricePerHour:  0,
			Status:        config.Available,
		},
		paidLocationID: {
			ID:            paidLocationID,
			Name:          "Durbar Marg Parking",
			Address:       "Durbar Marg, Kathmandu",
			Position:      model.NewGeoPoint(85.3170, 27.7127),
			NumberOfSpots: 10,
			PricePerHour:  60,
			Status:        config.Available,
		},
		tinyLocationID: {
			ID:            tinyLocationID,
			Name:          "Alley Lot",
			Address:       "Jhamsikhel, Lalitpur",
			Position:      model.NewGeoPoint(85.3096, 27.6770),
			NumberOfSpots: 2,
			PricePerHour:  0,
			Status:        config.Available,
		},
	}}

	f := &fixture{
		repo:     newMemBookingRepo(),
		locks:    newMemLockRepo(),
		payments: &mockPayments{},
		notifier: &mockNotifier{},
	}
	f.svc = NewBookingService(
		f.repo,
		f.locks,
		locations,
		validator.NewBookingValidator(cfg.Log),
		f.payments,
		f.notifier,
		cfg,
	)
	return f
}

func newBooking(locationID string) *model.Booking {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	return &model.Booking{
		LocationID: locationID,
		UserID:     "user-42",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		Plate:      "ba 2 pa 1234",
		Phone:      "+9779841234567",
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_FreeBookingConfirmsSynchronously(t *testing.T) {
	f := newFixture(config.BestEffort)

	result, err := f.svc.Create(context.Background(), newBooking(freeLocationID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Booking.Status != config.Booked {
		t.Errorf("expected status booked, got %q", result.Booking.Status)
	}
	if result.PaymentRedirect != "" {
		t.Errorf("free booking must not carry a payment redirect, got %q", result.PaymentRedirect)
	}
	if result.Booking.Amount != 0 {
		t.Errorf("expected amount 0, got %f", result.Booking.Amount)
	}
	if result.Booking.Plate != "BA2PA1234" {
		t.Errorf("expected normalized plate, got %q", result.Booking.Plate)
	}
	if f.notifier.count() != 1 {
		t.Errorf("expected 1 confirmation, got %d", f.notifier.count())
	}
}

func TestCreate_PaidBookingStaysPendingWithRedirect(t *testing.T) {
	f := newFixture(config.BestEffort)

	result, err := f.svc.Create(context.Background(), newBooking(paidLocationID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Booking.Status != config.Pending {
		t.Errorf("expected status pending, got %q", result.Booking.Status)
	}
	if result.PaymentRedirect == "" {
		t.Error("expected a payment redirect URL")
	}
	if result.Booking.Amount != 120 {
		t.Errorf("expected amount 120 for 2h at 60/h, got %f", result.Booking.Amount)
	}
	if result.Booking.PaymentSessionID == "" {
		t.Error("expected a payment session to be attached")
	}
	if len(f.payments.requests) != 1 {
		t.Fatalf("expected 1 payment session request, got %d", len(f.payments.requests))
	}
	if f.payments.requests[0].BookingID != result.Booking.ID {
		t.Errorf("session correlation token must be the booking id, got %q", f.payments.requests[0].BookingID)
	}
	if f.notifier.count() != 0 {
		t.Errorf("paid booking must not confirm before reconcile, got %d notifications", f.notifier.count())
	}
}

func TestCreate_PaymentFailureLeavesBookingPending(t *testing.T) {
	f := newFixture(config.BestEffort)
	f.payments.fail = true

	_, err := f.svc.Create(context.Background(), newBooking(paidLocationID))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsCode(err, apperrors.CodeUnavailable) {
		t.Errorf("expected unavailable error, got %v", err)
	}

	// The pending booking survives so a later reconcile or cancel can
	// settle it.
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	if len(f.repo.store) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(f.repo.store))
	}
	for _, b := range f.repo.store {
		if b.Status != config.Pending {
			t.Errorf("expected stored booking to stay pending, got %q", b.Status)
		}
	}
}

func TestCreate_UnknownLocation(t *testing.T) {
	f := newFixture(config.BestEffort)

	_, err := f.svc.Create(context.Background(), newBooking("64f0000000000000000000ff"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestCreate_DisabledLocation(t *testing.T) {
	f := newFixture(config.BestEffort)

	b := newBooking(freeLocationID)
	locs := &mockLocations{byID: map[string]*model.ParkingLocation{
		freeLocationID: {
			ID:            freeLocationID,
			Name:          "Ratna Park Free Lot",
			Address:       "Ratna Park, Kathmandu",
			Position:      model.NewGeoPoint(85.3147, 27.7064),
			NumberOfSpots: 10,
			Status:        config.NotAvailable,
		},
	}}
	cfg := &config.Config{
		Log:                 logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		BookingCreatePolicy: config.BestEffort,
		SlotLockTTL:         10 * time.Second,
	}
	svc := NewBookingService(f.repo, f.locks, locs, validator.NewBookingValidator(cfg.Log), f.payments, f.notifier, cfg)

	_, err := svc.Create(context.Background(), b)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestCreate_CapacityEnforcedUnderSerializedPolicy(t *testing.T) {
	f := newFixture(config.SerializePerLocation)

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Create(context.Background(), newBooking(tinyLocationID)); err != nil {
			t.Fatalf("booking %d: unexpected error: %v", i, err)
		}
	}

	_, err := f.svc.Create(context.Background(), newBooking(tinyLocationID))
	if err == nil {
		t.Fatal("expected capacity conflict, got nil")
	}
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestCreate_ConcurrentCreatesRespectCapacity(t *testing.T) {
	f := newFixture(config.SerializePerLocation)

	const workers = 3
	var wg sync.WaitGroup
	var mu sync.Mutex
	booked, conflicts := 0, 0
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				_, err := f.svc.Create(context.Background(), newBooking(tinyLocationID))
				if err == nil {
					mu.Lock()
					booked++
					mu.Unlock()
					return
				}
				if !apperrors.IsCode(err, apperrors.CodeConflict) {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if strings.Contains(err.Error(), "another request") {
					// Transient slot lock contention, try again.
					continue
				}
				mu.Lock()
				conflicts++
				mu.Unlock()
				return
			}
		}()
	}
	wg.Wait()

	if booked != 2 || conflicts != 1 {
		t.Fatalf("expected 2 booked and 1 capacity conflict, got %d booked, %d conflicts", booked, conflicts)
	}

	window := newBooking(tinyLocationID)
	count, err := f.repo.CountOverlapping(context.Background(), tinyLocationID, window.StartTime, window.EndTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 bookings holding capacity, got %d", count)
	}
}

func TestCreate_TouchingWindowDoesNotCount(t *testing.T) {
	f := newFixture(config.SerializePerLocation)

	first := newBooking(tinyLocationID)
	second := newBooking(tinyLocationID)
	third := newBooking(tinyLocationID)
	for _, b := range []*model.Booking{first, second} {
		if _, err := f.svc.Create(context.Background(), b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Lot is full for the original window, but a window starting exactly
	// when the others end does not overlap.
	third.StartTime = first.EndTime
	third.EndTime = first.EndTime.Add(time.Hour)
	if _, err := f.svc.Create(context.Background(), third); err != nil {
		t.Fatalf("touching window should be accepted, got: %v", err)
	}
}

func TestCreate_PendingHoldsCapacity(t *testing.T) {
	f := newFixture(config.SerializePerLocation)

	// Paid bookings at a 2-spot lot stay pending, yet still hold spots.
	locs := &mockLocations{byID: map[string]*model.ParkingLocation{
		tinyLocationID: {
			ID:            tinyLocationID,
			Name:          "Alley Lot",
			Address:       "Jhamsikhel, Lalitpur",
			Position:      model.NewGeoPoint(85.3096, 27.6770),
			NumberOfSpots: 2,
			PricePerHour:  30,
			Status:        config.Available,
		},
	}}
	cfg := &config.Config{
		Log:                 logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		BookingCreatePolicy: config.SerializePerLocation,
		SlotLockTTL:         10 * time.Second,
		PaymentCurrency:     "NPR",
	}
	svc := NewBookingService(f.repo, f.locks, locs, validator.NewBookingValidator(cfg.Log), f.payments, f.notifier, cfg)

	for i := 0; i < 2; i++ {
		result, err := svc.Create(context.Background(), newBooking(tinyLocationID))
		if err != nil {
			t.Fatalf("booking %d: unexpected error: %v", i, err)
		}
		if result.Booking.Status != config.Pending {
			t.Fatalf("booking %d: expected pending, got %q", i, result.Booking.Status)
		}
	}

	_, err := svc.Create(context.Background(), newBooking(tinyLocationID))
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("pending bookings must hold capacity, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Reconcile
// ────────────────────────────────────────────────

func pendingBooking(t *testing.T, f *fixture, locationID string) *model.Booking {
	t.Helper()
	b := newBooking(locationID)
	b.Status = config.Pending
	b.Plate = "BA2PA1234"
	b.Amount = 120
	b.BookingDate = b.StartTime
	if err := f.repo.Create(context.Background(), b); err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}
	return b
}

func TestReconcile_SuccessConfirmsOnce(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	result, err := f.svc.Reconcile(context.Background(), b.ID, OutcomeSuccess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Booking.Status != config.Booked {
		t.Errorf("expected booked, got %q", result.Booking.Status)
	}
	if result.NotificationError != "" {
		t.Errorf("expected no notification error, got %q", result.NotificationError)
	}
	if f.notifier.count() != 1 {
		t.Errorf("expected 1 confirmation, got %d", f.notifier.count())
	}
}

func TestReconcile_ConcurrentSettlesExactlyOnce(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Reconcile(context.Background(), b.ID, OutcomeSuccess)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: duplicate reconcile must be a no-op, got %v", i, err)
		}
	}
	if f.notifier.count() != 1 {
		t.Errorf("expected exactly 1 confirmation, got %d", f.notifier.count())
	}

	final, err := f.svc.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Status != config.Booked {
		t.Errorf("expected booked, got %q", final.Status)
	}
}

func TestReconcile_FailureLeavesPending(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	result, err := f.svc.Reconcile(context.Background(), b.ID, OutcomeFailure)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Booking.Status != config.Pending {
		t.Errorf("failed payment must leave the booking pending, got %q", result.Booking.Status)
	}
	if f.notifier.count() != 0 {
		t.Errorf("failed payment must not confirm, got %d notifications", f.notifier.count())
	}

	// The held spot can still be paid for, so the retry path stays open.
	if _, err := f.svc.Reconcile(context.Background(), b.ID, OutcomeSuccess); err != nil {
		t.Fatalf("retry after failure must succeed: %v", err)
	}
}

func TestReconcile_AfterCancelIsRejected(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	if _, err := f.svc.Cancel(context.Background(), b.ID); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}

	_, err := f.svc.Reconcile(context.Background(), b.ID, OutcomeSuccess)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("cancelled booking must never resurrect, got %v", err)
	}
}

func TestReconcile_LateFailureDoesNotUndoBooked(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	if _, err := f.svc.Reconcile(context.Background(), b.ID, OutcomeSuccess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := f.svc.Reconcile(context.Background(), b.ID, OutcomeFailure)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Booking.Status != config.Booked {
		t.Errorf("late failure report must not undo a booked booking, got %q", result.Booking.Status)
	}
}

func TestReconcile_UnknownBooking(t *testing.T) {
	f := newFixture(config.BestEffort)

	_, err := f.svc.Reconcile(context.Background(), primitive.NewObjectID().Hex(), OutcomeSuccess)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestReconcile_UnknownOutcome(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	_, err := f.svc.Reconcile(context.Background(), b.ID, "maybe")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func TestCancel_ZeroesAmount(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	booking, err := f.svc.Cancel(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != config.Cancelled {
		t.Errorf("expected cancelled, got %q", booking.Status)
	}
	if booking.Amount != 0 {
		t.Errorf("expected amount 0, got %f", booking.Amount)
	}
}

func TestCancel_DoubleCancelReportsNotFound(t *testing.T) {
	f := newFixture(config.BestEffort)
	b := pendingBooking(t, f, paidLocationID)

	if _, err := f.svc.Cancel(context.Background(), b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.Cancel(context.Background(), b.ID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found for double cancel, got %v", err)
	}
}

func TestCancel_ReleasesCapacity(t *testing.T) {
	f := newFixture(config.SerializePerLocation)

	first, err := f.svc.Create(context.Background(), newBooking(tinyLocationID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), newBooking(tinyLocationID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.svc.Cancel(context.Background(), first.Booking.ID); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}

	// The cancelled spot is free again for the same window.
	if _, err := f.svc.Create(context.Background(), newBooking(tinyLocationID)); err != nil {
		t.Fatalf("expected freed capacity after cancel, got: %v", err)
	}
}

// ────────────────────────────────────────────────
// Notifications and pricing
// ────────────────────────────────────────────────

func TestNotificationFailureDoesNotUnwindBooking(t *testing.T) {
	f := newFixture(config.BestEffort)
	f.notifier.err = apperrors.Unavailable("broker down")

	result, err := f.svc.Create(context.Background(), newBooking(freeLocationID))
	if err != nil {
		t.Fatalf("booking must succeed despite notification failure, got: %v", err)
	}
	if result.Booking.Status != config.Booked {
		t.Errorf("expected booked, got %q", result.Booking.Status)
	}
	if result.NotificationError == "" {
		t.Error("expected the response to flag the failed confirmation")
	}
}

func TestReconcile_NotificationFailureReportedNotFatal(t *testing.T) {
	f := newFixture(config.BestEffort)
	f.notifier.err = apperrors.Unavailable("broker down")
	b := pendingBooking(t, f, paidLocationID)

	result, err := f.svc.Reconcile(context.Background(), b.ID, OutcomeSuccess)
	if err != nil {
		t.Fatalf("reconcile must succeed despite notification failure, got: %v", err)
	}
	if result.Booking.Status != config.Booked {
		t.Errorf("expected booked, got %q", result.Booking.Status)
	}
	if result.NotificationError == "" {
		t.Error("expected the response to flag the failed confirmation")
	}

	final, err := f.svc.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Status != config.Booked {
		t.Errorf("notification failure must not unwind the booking, got %q", final.Status)
	}
}

func TestComputeAmount(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		duration time.Duration
		price    float64
		want     float64
	}{
		{"two hours flat", 2 * time.Hour, 60, 120},
		{"free location", 3 * time.Hour, 0, 0},
		{"half hour", 30 * time.Minute, 50, 25},
		{"half hour odd rate", 30 * time.Minute, 55.5, 27.75},
		{"repeating fraction rounds down", 20 * time.Minute, 100, 33.33},
		{"repeating fraction rounds up", 40 * time.Minute, 100, 66.67},
		{"quarter hour", 15 * time.Minute, 100, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeAmount(base, base.Add(tt.duration), tt.price)
			if got != tt.want {
				t.Errorf("computeAmount(%v, %f) = %f, want %f", tt.duration, tt.price, got, tt.want)
			}
		})
	}
}

// ────────────────────────────────────────────────
// Day listing
// ────────────────────────────────────────────────

func TestListForDay_SortedAndScoped(t *testing.T) {
	f := newFixture(config.BestEffort)

	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	seed := func(hour int, location string) {
		b := newBooking(location)
		b.StartTime = day.Add(time.Duration(hour) * time.Hour)
		b.EndTime = b.StartTime.Add(time.Hour)
		b.BookingDate = b.StartTime
		b.Status = config.Booked
		if err := f.repo.Create(context.Background(), b); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
	}
	seed(14, paidLocationID)
	seed(9, paidLocationID)
	seed(11, paidLocationID)
	seed(10, freeLocationID)

	// A pending booking on the same day is hidden by the booked filter.
	held := newBooking(paidLocationID)
	held.StartTime = day.Add(16 * time.Hour)
	held.EndTime = held.StartTime.Add(time.Hour)
	held.BookingDate = held.StartTime
	held.Status = config.Pending
	if err := f.repo.Create(context.Background(), held); err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}

	// A booking on the next day must not appear.
	next := newBooking(paidLocationID)
	next.StartTime = day.Add(26 * time.Hour)
	next.EndTime = next.StartTime.Add(time.Hour)
	next.BookingDate = next.StartTime
	if err := f.repo.Create(context.Background(), next); err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}

	bookings, err := f.svc.ListForDay(context.Background(), paidLocationID, day, config.Booked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(bookings))
	}
	for i := 1; i < len(bookings); i++ {
		if bookings[i].StartTime.Before(bookings[i-1].StartTime) {
			t.Errorf("bookings not sorted by start time: %v before %v",
				bookings[i].StartTime, bookings[i-1].StartTime)
		}
	}

	all, err := f.svc.ListForDay(context.Background(), paidLocationID, day, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 bookings without a status filter, got %d", len(all))
	}
}
