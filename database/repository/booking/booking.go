package bookingRepo

import (
	"context"
	"errors"
	"time"

	"slotify/models"
)

var (
	// ErrNotFound is returned when a booking lookup matches nothing.
	ErrNotFound = errors.New("booking not found")
	// ErrCapacityExceeded is returned when the in-transaction capacity
	// re-check finds the interval already full.
	ErrCapacityExceeded = errors.New("booking capacity exceeded")
)

// CommitGuard carries the capacity constraints the commit transaction must
// re-verify before the insert becomes durable. The resource window is the
// booking interval expanded by the capability's buffers; the buffers are
// carried so existing bookings can be expanded the same way before the
// peak-overlap count.
type CommitGuard struct {
	ResourceWindowStart time.Time
	ResourceWindowEnd   time.Time
	BufferBefore        time.Duration
	BufferAfter         time.Duration
	ConcurrencyLimit    int
	LocationCapacity    int
}

// BookingRepository is the single source of truth for bookings. The
// availability engine only reads; all writes flow through CommitBooking and
// the status operations.
type BookingRepository interface {
	GetResourceBookings(ctx context.Context, resourceID string, from, to time.Time, statuses []string) ([]models.Booking, error)
	GetLocationBookings(ctx context.Context, locationID string, from, to time.Time, statuses []string) ([]models.Booking, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error)
	FindByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)

	// CommitBooking inserts the booking inside a transaction, re-checking
	// the guard. A duplicate idempotency key returns the original booking
	// instead of inserting. ErrCapacityExceeded aborts the transaction.
	CommitBooking(ctx context.Context, booking *models.Booking, guard CommitGuard) (*models.Booking, error)

	UpdateStatus(ctx context.Context, id, status string) error
	// ExpirePending cancels Pending bookings created before the cutoff so
	// they stop holding capacity. Returns the number cancelled.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
	EnsureIndexes() error
}
