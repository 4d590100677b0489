package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "slotify/database/repository/booking"
	catalogRepo "slotify/database/repository/catalog"
	"slotify/models"
	"slotify/services/availability"
	"slotify/utils"
)

// AttemptState tracks a booking attempt through the commit protocol.
type AttemptState string

const (
	StateRequested    AttemptState = "Requested"
	StateLockAcquired AttemptState = "LockAcquired"
	StateValidated    AttemptState = "Validated"
	StateCommitted    AttemptState = "Committed"
	StateRejected     AttemptState = "Rejected"
	StateLockFailed   AttemptState = "LockFailed"
)

// CommitRequest carries everything needed to turn a chosen slot into a
// booking. Start and End restate the slot coordinates; the fingerprint must
// match them or the request is rejected outright.
type CommitRequest struct {
	SlotFingerprint string    `json:"slotFingerprint"`
	ResourceID      string    `json:"resourceId"`
	CapabilityID    string    `json:"capabilityId"`
	LocationID      string    `json:"locationId"`
	CustomerID      string    `json:"customerId"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	IdempotencyKey  string    `json:"idempotencyKey,omitempty"`
}

// Controller converts chosen slots into durable, conflict-free bookings.
type Controller interface {
	CommitBooking(ctx context.Context, req CommitRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, customerID string) error
	ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error)
}

// DefaultController is the production implementation of the commit protocol:
// lock, re-validate, commit transactionally, release on every path.
type DefaultController struct {
	Catalog  catalogRepo.CatalogRepository
	Bookings bookingRepo.BookingRepository
	Engine   availability.Engine
	Locks    LockService
	LockTTL  time.Duration
}

func (c *DefaultController) CommitBooking(ctx context.Context, req CommitRequest) (*models.Booking, error) {
	logger := utils.GetLogger().With(
		zap.String("resourceId", req.ResourceID),
		zap.String("fingerprint", req.SlotFingerprint))

	// Cancelled before any work: no side effects.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := availability.NewInterval(req.Start, req.End); err != nil {
		return nil, fmt.Errorf("%w: [%s, %s)", availability.ErrInvalidWindow,
			req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))
	}
	expected := models.SlotFingerprint(req.ResourceID, req.CapabilityID, req.Start, req.End)
	if req.SlotFingerprint != expected {
		return nil, ErrFingerprintMismatch
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = fmt.Sprintf("%s:%s", req.SlotFingerprint, req.CustomerID)
	}

	// A repeated commit with the same key returns the original booking.
	if existing, err := c.Bookings.FindByIdempotencyKey(ctx, idempotencyKey); err == nil {
		logger.Info("idempotent commit replay", zap.String("bookingId", existing.ID))
		return existing, nil
	} else if !errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, fmt.Errorf("%w: idempotency lookup: %v", ErrTransactionFailed, err)
	}

	resource, err := c.Catalog.GetResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	capability, err := c.Catalog.GetCapability(ctx, req.CapabilityID)
	if err != nil {
		return nil, err
	}
	location, err := c.Catalog.GetLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	if !resource.Active {
		logger.Info("commit rejected, resource inactive")
		return nil, fmt.Errorf("%w: resource %s is inactive", ErrSlotNoLongerAvailable, resource.ID)
	}

	state := StateRequested
	lock, err := c.acquireLock(ctx, resource, capability, req)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			state = StateLockFailed
			logger.Info("booking attempt lost lock race", zap.String("state", string(state)))
			return nil, fmt.Errorf("%w: resource %s [%s, %s)", ErrSlotContended,
				req.ResourceID, req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))
		}
		// Lock infrastructure failure: fail open. The transaction's
		// uniqueness constraint still prevents overselling.
		logger.Warn("lock service unavailable, proceeding unlocked", zap.Error(err))
		lock = nil
	}
	if lock != nil {
		state = StateLockAcquired
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Locks.Release(releaseCtx, lock); err != nil {
			logger.Warn("failed to release slot lock", zap.Error(err))
		}
	}()

	// Caller cancelled while we were acquiring: release (deferred) and stop.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	open, err := c.Engine.VerifySlotOpen(ctx, resource, capability, location, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: re-validation: %v", ErrTransactionFailed, err)
	}
	if !open {
		state = StateRejected
		logger.Info("slot taken before commit", zap.String("state", string(state)))
		return nil, ErrSlotNoLongerAvailable
	}
	state = StateValidated

	booking := &models.Booking{
		ID:             uuid.New().String(),
		ResourceID:     req.ResourceID,
		CapabilityID:   req.CapabilityID,
		LocationID:     req.LocationID,
		CustomerID:     req.CustomerID,
		Start:          req.Start,
		End:            req.End,
		Status:         models.BookingStatusConfirmed,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now(),
	}
	guard := bookingRepo.CommitGuard{
		ResourceWindowStart: req.Start.Add(-capability.BufferBefore()),
		ResourceWindowEnd:   req.End.Add(capability.BufferAfter()),
		BufferBefore:        capability.BufferBefore(),
		BufferAfter:         capability.BufferAfter(),
		ConcurrencyLimit:    resource.ConcurrencyLimit,
		LocationCapacity:    location.Capacity,
	}
	committed, err := c.Bookings.CommitBooking(ctx, booking, guard)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrCapacityExceeded) {
			state = StateRejected
			return nil, ErrSlotNoLongerAvailable
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	state = StateCommitted
	logger.Info("booking committed",
		zap.String("bookingId", committed.ID),
		zap.String("state", string(state)))
	return committed, nil
}

// acquireLock picks the locking primitive for the resource's concurrency
// limit: a pure mutex on the slot fingerprint for limit 1, a counting
// semaphore over granularity buckets otherwise. The semaphore covers the
// buffer-expanded interval so overlapping holds contend correctly.
func (c *DefaultController) acquireLock(ctx context.Context, resource *models.Resource, capability *models.Capability, req CommitRequest) (*SlotLock, error) {
	ttl := c.LockTTL
	if ttl <= 0 {
		ttl = 8 * time.Second
	}
	if resource.ConcurrencyLimit <= 1 {
		key := fmt.Sprintf("slotlock:%s:%s", req.ResourceID, req.SlotFingerprint)
		return c.Locks.Acquire(ctx, key, ttl)
	}
	key := fmt.Sprintf("slotsem:%s", req.ResourceID)
	start := req.Start.Add(-capability.BufferBefore())
	end := req.End.Add(capability.BufferAfter())
	return c.Locks.AcquireSlot(ctx, key, start, end, resource.ConcurrencyLimit, ttl)
}

// CancelBooking cancels a customer's booking before it starts. Started
// bookings stay on the books.
func (c *DefaultController) CancelBooking(ctx context.Context, bookingID, customerID string) error {
	booking, err := c.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != customerID {
		return bookingRepo.ErrNotFound
	}
	if !booking.Start.After(time.Now()) {
		return ErrBookingStarted
	}
	if err := c.Bookings.UpdateStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return err
	}
	utils.GetLogger().Info("booking cancelled",
		zap.String("bookingId", bookingID),
		zap.String("customerId", customerID))
	return nil
}

// ListCustomerBookings returns a customer's bookings, newest first.
func (c *DefaultController) ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	return c.Bookings.FindByCustomer(ctx, customerID)
}
