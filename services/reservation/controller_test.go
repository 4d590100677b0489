package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "slotify/database/repository/booking"
	catalogRepo "slotify/database/repository/catalog"
	"slotify/models"
	"slotify/services/availability"
)

// A fixed day far enough ahead that cancellation guards see the bookings as
// not yet started.
var day = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

type fakeCatalog struct {
	resource   *models.Resource
	capability *models.Capability
	location   *models.Location
}

func (f *fakeCatalog) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	if f.resource == nil || f.resource.ID != id {
		return nil, catalogRepo.ErrUnknownResource
	}
	return f.resource, nil
}

func (f *fakeCatalog) GetCapability(ctx context.Context, id string) (*models.Capability, error) {
	if f.capability == nil || f.capability.ID != id {
		return nil, catalogRepo.ErrUnknownCapability
	}
	return f.capability, nil
}

func (f *fakeCatalog) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	if f.location == nil || f.location.ID != id {
		return nil, catalogRepo.ErrUnknownLocation
	}
	return f.location, nil
}

func (f *fakeCatalog) EnsureIndexes() error { return nil }

type fakeBookingStore struct {
	mu        sync.Mutex
	byKey     map[string]*models.Booking
	byID      map[string]*models.Booking
	commits   int
	commitErr error
	// capacity > 0 makes CommitBooking enforce it the way the real
	// transaction guard does.
	capacity int
	statuses map[string]string
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		byKey:    map[string]*models.Booking{},
		byID:     map[string]*models.Booking{},
		statuses: map[string]string{},
	}
}

func (f *fakeBookingStore) GetResourceBookings(ctx context.Context, resourceID string, from, to time.Time, statuses []string) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) GetLocationBookings(ctx context.Context, locationID string, from, to time.Time, statuses []string) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrNotFound
}

func (f *fakeBookingStore) FindByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byKey[key]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrNotFound
}

func (f *fakeBookingStore) FindByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.byID {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) CommitBooking(ctx context.Context, booking *models.Booking, guard bookingRepo.CommitGuard) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	if existing, ok := f.byKey[booking.IdempotencyKey]; ok {
		return existing, nil
	}
	if f.capacity > 0 && f.commits >= f.capacity {
		return nil, bookingRepo.ErrCapacityExceeded
	}
	f.commits++
	f.byKey[booking.IdempotencyKey] = booking
	f.byID[booking.ID] = booking
	return booking, nil
}

func (f *fakeBookingStore) UpdateStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return bookingRepo.ErrNotFound
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeBookingStore) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeBookingStore) EnsureIndexes() error { return nil }

type fakeEngine struct {
	open    bool
	openErr error
}

func (f *fakeEngine) ComputeAvailability(ctx context.Context, req availability.AvailabilityRequest) ([]models.Slot, error) {
	return nil, nil
}

func (f *fakeEngine) VerifySlotOpen(ctx context.Context, resource *models.Resource, capability *models.Capability, location *models.Location, start, end time.Time) (bool, error) {
	return f.open, f.openErr
}

type fakeLocks struct {
	mu         sync.Mutex
	held       map[string]bool
	acquires   int
	slots      int
	releases   int
	acquireErr error
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{held: map[string]bool{}}
}

func (f *fakeLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (*SlotLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	if f.held[key] {
		return nil, ErrLockHeld
	}
	f.held[key] = true
	return &SlotLock{Key: key, Token: "tok"}, nil
}

func (f *fakeLocks) AcquireSlot(ctx context.Context, key string, start, end time.Time, limit int, ttl time.Duration) (*SlotLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots++
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	return &SlotLock{Key: key, Buckets: []string{key + ":0"}}, nil
}

func (f *fakeLocks) Release(ctx context.Context, lock *SlotLock) error {
	if lock == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	delete(f.held, lock.Key)
	return nil
}

func testController(limit int) (*DefaultController, *fakeBookingStore, *fakeLocks, *fakeEngine) {
	catalog := &fakeCatalog{
		resource: &models.Resource{
			ID:               "res-1",
			CapabilityIDs:    []string{"cap-1"},
			ConcurrencyLimit: limit,
			Active:           true,
		},
		capability: &models.Capability{ID: "cap-1", DurationMinutes: 30},
		location:   &models.Location{ID: "loc-1", OpenMinute: 0, CloseMinute: 1440, Capacity: 10},
	}
	store := newFakeBookingStore()
	locks := newFakeLocks()
	engine := &fakeEngine{open: true}
	ctrl := &DefaultController{
		Catalog:  catalog,
		Bookings: store,
		Engine:   engine,
		Locks:    locks,
		LockTTL:  time.Second,
	}
	return ctrl, store, locks, engine
}

func commitRequest(customerID string) CommitRequest {
	start, end := at(10, 0), at(10, 30)
	return CommitRequest{
		SlotFingerprint: models.SlotFingerprint("res-1", "cap-1", start, end),
		ResourceID:      "res-1",
		CapabilityID:    "cap-1",
		LocationID:      "loc-1",
		CustomerID:      customerID,
		Start:           start,
		End:             end,
	}
}

func TestCommitBookingSuccess(t *testing.T) {
	ctrl, store, locks, _ := testController(1)

	booking, err := ctrl.CommitBooking(context.Background(), commitRequest("cust-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != models.BookingStatusConfirmed {
		t.Fatalf("got status %q, want Confirmed", booking.Status)
	}
	if store.commits != 1 {
		t.Fatalf("got %d commits, want 1", store.commits)
	}
	if locks.acquires != 1 || locks.releases != 1 {
		t.Fatalf("got %d acquires / %d releases, want 1/1", locks.acquires, locks.releases)
	}
}

func TestCommitBookingIdempotentReplay(t *testing.T) {
	ctrl, store, locks, _ := testController(1)
	req := commitRequest("cust-1")
	req.IdempotencyKey = "idem-1"

	first, err := ctrl.CommitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	second, err := ctrl.CommitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("replay created a new booking: %s vs %s", first.ID, second.ID)
	}
	if store.commits != 1 {
		t.Fatalf("got %d commits, want 1", store.commits)
	}
	// The replay is answered before the lock layer is touched.
	if locks.acquires != 1 {
		t.Fatalf("got %d acquires, want 1", locks.acquires)
	}
}

func TestCommitBookingContended(t *testing.T) {
	ctrl, store, locks, _ := testController(1)
	req := commitRequest("cust-1")

	// Another attempt already holds the slot lock.
	if _, err := locks.Acquire(context.Background(), "slotlock:res-1:"+req.SlotFingerprint, time.Second); err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	if _, err := ctrl.CommitBooking(context.Background(), req); !errors.Is(err, ErrSlotContended) {
		t.Fatalf("got %v, want ErrSlotContended", err)
	}
	if store.commits != 0 {
		t.Fatalf("contended attempt committed %d bookings", store.commits)
	}
	if locks.releases != 0 {
		t.Fatal("a lock it never held was released")
	}
}

func TestCommitBookingFailsOpenOnLockInfraError(t *testing.T) {
	ctrl, store, locks, _ := testController(1)
	locks.acquireErr = errors.New("redis down")

	booking, err := ctrl.CommitBooking(context.Background(), commitRequest("cust-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking == nil || store.commits != 1 {
		t.Fatal("lock infrastructure failure must not block the commit")
	}
}

func TestCommitBookingSlotNoLongerAvailable(t *testing.T) {
	ctrl, store, locks, engine := testController(1)
	engine.open = false

	if _, err := ctrl.CommitBooking(context.Background(), commitRequest("cust-1")); !errors.Is(err, ErrSlotNoLongerAvailable) {
		t.Fatalf("got %v, want ErrSlotNoLongerAvailable", err)
	}
	if store.commits != 0 {
		t.Fatal("rejected attempt still committed")
	}
	if locks.releases != 1 {
		t.Fatalf("got %d releases, want 1 on the rejection path", locks.releases)
	}
}

func TestCommitBookingCapacityExceededInTransaction(t *testing.T) {
	ctrl, store, locks, _ := testController(1)
	store.commitErr = bookingRepo.ErrCapacityExceeded

	if _, err := ctrl.CommitBooking(context.Background(), commitRequest("cust-1")); !errors.Is(err, ErrSlotNoLongerAvailable) {
		t.Fatalf("got %v, want ErrSlotNoLongerAvailable", err)
	}
	if locks.releases != 1 {
		t.Fatalf("got %d releases, want 1 on the transaction-reject path", locks.releases)
	}
}

func TestCommitBookingFingerprintMismatch(t *testing.T) {
	ctrl, _, locks, _ := testController(1)
	req := commitRequest("cust-1")
	req.SlotFingerprint = "deadbeef"

	if _, err := ctrl.CommitBooking(context.Background(), req); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("got %v, want ErrFingerprintMismatch", err)
	}
	if locks.acquires != 0 {
		t.Fatal("mismatched request reached the lock layer")
	}
}

func TestCommitBookingInactiveResource(t *testing.T) {
	ctrl, store, locks, _ := testController(1)
	catalog := ctrl.Catalog.(*fakeCatalog)
	catalog.resource.Active = false

	if _, err := ctrl.CommitBooking(context.Background(), commitRequest("cust-1")); !errors.Is(err, ErrSlotNoLongerAvailable) {
		t.Fatalf("got %v, want ErrSlotNoLongerAvailable", err)
	}
	if store.commits != 0 {
		t.Fatal("inactive resource accepted a commit")
	}
	if locks.acquires != 0 || locks.slots != 0 {
		t.Fatal("inactive resource reached the lock layer")
	}
}

func TestCommitBookingUsesSemaphoreAboveLimitOne(t *testing.T) {
	ctrl, _, locks, _ := testController(3)

	if _, err := ctrl.CommitBooking(context.Background(), commitRequest("cust-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locks.slots != 1 || locks.acquires != 0 {
		t.Fatalf("got %d semaphore / %d exclusive acquires, want 1/0", locks.slots, locks.acquires)
	}
	if locks.releases != 1 {
		t.Fatalf("got %d releases, want 1", locks.releases)
	}
}

func TestCommitBookingConcurrentAttemptsOneWinner(t *testing.T) {
	ctrl, store, _, _ := testController(1)
	store.capacity = 1

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Distinct customers, same slot: distinct idempotency keys.
			req := commitRequest("cust-" + string(rune('a'+i)))
			_, errs[i] = ctrl.CommitBooking(context.Background(), req)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrSlotContended), errors.Is(err, ErrSlotNoLongerAvailable):
			// Lost at the lock or at the transaction guard.
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("got %d winners, want exactly 1", winners)
	}
	if store.commits != 1 {
		t.Fatalf("got %d commits, want 1", store.commits)
	}
}

func TestCancelBooking(t *testing.T) {
	ctrl, store, _, _ := testController(1)

	booking, err := ctrl.CommitBooking(context.Background(), commitRequest("cust-1"))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := ctrl.CancelBooking(context.Background(), booking.ID, "cust-other"); !errors.Is(err, bookingRepo.ErrNotFound) {
		t.Fatalf("foreign customer: got %v, want ErrNotFound", err)
	}
	if err := ctrl.CancelBooking(context.Background(), "missing", "cust-1"); !errors.Is(err, bookingRepo.ErrNotFound) {
		t.Fatalf("missing booking: got %v, want ErrNotFound", err)
	}
	if err := ctrl.CancelBooking(context.Background(), booking.ID, "cust-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if store.statuses[booking.ID] != models.BookingStatusCancelled {
		t.Fatalf("got status %q, want Cancelled", store.statuses[booking.ID])
	}
}

func TestCancelBookingAlreadyStarted(t *testing.T) {
	ctrl, store, _, _ := testController(1)

	started := &models.Booking{
		ID:         "b-started",
		CustomerID: "cust-1",
		Start:      time.Now().Add(-time.Hour),
		End:        time.Now().Add(-30 * time.Minute),
		Status:     models.BookingStatusConfirmed,
	}
	store.byID[started.ID] = started

	if err := ctrl.CancelBooking(context.Background(), started.ID, "cust-1"); !errors.Is(err, ErrBookingStarted) {
		t.Fatalf("got %v, want ErrBookingStarted", err)
	}
}
