package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "slotify/database/repository/booking"
	catalogRepo "slotify/database/repository/catalog"
	rulesRepo "slotify/database/repository/rules"
	"slotify/models"
	"slotify/utils"

	"go.uber.org/zap"
)

// ErrInvalidWindow is returned when a query window's start does not precede
// its end.
var ErrInvalidWindow = errors.New("invalid window")

// AvailabilityRequest identifies the triad and window to compute slots for.
type AvailabilityRequest struct {
	ResourceID   string
	CapabilityID string
	LocationID   string
	From         time.Time
	To           time.Time
}

// Engine computes the bookable slots for a resource-capability-location
// triad over a window. Read-only: it never mutates any store.
type Engine interface {
	ComputeAvailability(ctx context.Context, req AvailabilityRequest) ([]models.Slot, error)
	// VerifySlotOpen re-runs the busy computation for exactly one candidate
	// interval against the live stores. Used by the reservation controller
	// while it holds the slot lock.
	VerifySlotOpen(ctx context.Context, resource *models.Resource, capability *models.Capability, location *models.Location, start, end time.Time) (bool, error)
}

// DefaultEngine is the production implementation.
type DefaultEngine struct {
	Catalog     catalogRepo.CatalogRepository
	Rules       rulesRepo.RuleRepository
	Bookings    bookingRepo.BookingRepository
	Granularity time.Duration
}

// holdingStatuses are the booking statuses that consume capacity.
var holdingStatuses = []string{models.BookingStatusPending, models.BookingStatusConfirmed}

// ComputeAvailability derives the ordered, non-overlapping slot list:
// resolve schedule rules, subtract capacity-saturated busy intervals,
// intersect with the location's free intervals, then enumerate candidates
// at the configured granularity.
func (e *DefaultEngine) ComputeAvailability(ctx context.Context, req AvailabilityRequest) ([]models.Slot, error) {
	logger := utils.GetLogger()

	window, err := NewInterval(req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("%w: [%s, %s)", ErrInvalidWindow,
			req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))
	}

	resource, err := e.Catalog.GetResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	capability, err := e.Catalog.GetCapability(ctx, req.CapabilityID)
	if err != nil {
		return nil, err
	}
	location, err := e.Catalog.GetLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	if !resource.CanPerform(capability.ID) {
		return nil, fmt.Errorf("%w: resource %s does not offer capability %s",
			catalogRepo.ErrUnknownCapability, resource.ID, capability.ID)
	}
	// Inactive resources take no bookings and advertise nothing.
	if !resource.Active {
		logger.Debug("resource inactive, no availability", zap.String("resourceId", resource.ID))
		return nil, nil
	}

	free, err := e.freeIntervals(ctx, resource, capability, location, window)
	if err != nil {
		return nil, err
	}

	slots := e.enumerateSlots(resource, capability, free, window)
	logger.Debug("availability computed",
		zap.String("resourceId", resource.ID),
		zap.String("capabilityId", capability.ID),
		zap.Int("freeIntervals", len(free)),
		zap.Int("slots", len(slots)))
	return slots, nil
}

// freeIntervals runs steps 1-4 of the computation: rule resolution, resource
// busy subtraction and location intersection.
func (e *DefaultEngine) freeIntervals(ctx context.Context, resource *models.Resource, capability *models.Capability, location *models.Location, window Interval) ([]Interval, error) {
	rules, err := e.Rules.GetRulesInWindow(ctx, resource.ID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule rules: %w", err)
	}
	availableBase := ResolveRules(rules, window)
	if len(availableBase) == 0 {
		return nil, nil
	}

	// Existing bookings overlapping the window, widened so a booking whose
	// buffer pokes into the window is still seen.
	fetchFrom := window.Start.Add(-capability.Span())
	fetchTo := window.End.Add(capability.Span())
	bookings, err := e.Bookings.GetResourceBookings(ctx, resource.ID, fetchFrom, fetchTo, holdingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resource bookings: %w", err)
	}
	busy := SaturatedIntervals(expandByBuffers(bookings, capability), resource.ConcurrencyLimit)

	free := SubtractAll(availableBase, busy)
	if len(free) == 0 {
		return nil, nil
	}

	locationFree, err := e.locationFreeIntervals(ctx, location, window)
	if err != nil {
		return nil, err
	}
	return IntersectSets(free, locationFree), nil
}

// locationFreeIntervals derives the intervals where the location is open and
// below its capacity.
func (e *DefaultEngine) locationFreeIntervals(ctx context.Context, location *models.Location, window Interval) ([]Interval, error) {
	open := operatingIntervals(location, window)
	if len(open) == 0 {
		return nil, nil
	}

	bookings, err := e.Bookings.GetLocationBookings(ctx, location.ID, window.Start, window.End, holdingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location bookings: %w", err)
	}
	saturated := SaturatedIntervals(bookingIntervals(bookings), location.Capacity)
	return SubtractAll(open, saturated), nil
}

// VerifySlotOpen checks that the exact candidate interval is still free for
// both the resource and the location. It widens the check window by the
// capability's buffers so neighbouring bookings' buffers are honoured.
func (e *DefaultEngine) VerifySlotOpen(ctx context.Context, resource *models.Resource, capability *models.Capability, location *models.Location, start, end time.Time) (bool, error) {
	if !resource.Active {
		return false, nil
	}
	block, err := NewInterval(start.Add(-capability.BufferBefore()), end.Add(capability.BufferAfter()))
	if err != nil {
		return false, fmt.Errorf("%w: [%s, %s)", ErrInvalidWindow,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	free, err := e.freeIntervals(ctx, resource, capability, location, block)
	if err != nil {
		return false, err
	}
	for _, iv := range free {
		if iv.Contains(block) {
			return true, nil
		}
	}
	return false, nil
}

// enumerateSlots walks each free interval at the configured granularity and
// emits every candidate whose full footprint (buffers included) fits.
func (e *DefaultEngine) enumerateSlots(resource *models.Resource, capability *models.Capability, free []Interval, window Interval) []models.Slot {
	step := e.Granularity
	if step <= 0 {
		step = 15 * time.Minute
	}
	span := capability.Span()

	var slots []models.Slot
	for _, iv := range free {
		for cursor := iv.Start; !cursor.Add(span).After(iv.End); cursor = cursor.Add(step) {
			start := cursor.Add(capability.BufferBefore())
			end := start.Add(capability.Duration())
			if start.Before(window.Start) || end.After(window.End) {
				continue
			}
			slots = append(slots, models.Slot{
				ResourceID:   resource.ID,
				CapabilityID: capability.ID,
				Start:        start,
				End:          end,
				Fingerprint:  models.SlotFingerprint(resource.ID, capability.ID, start, end),
			})
		}
	}
	return slots
}

// expandByBuffers widens each capacity-holding booking by the capability's
// buffers; a new booking may not start inside another booking's buffer.
func expandByBuffers(bookings []models.Booking, capability *models.Capability) []Interval {
	intervals := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		intervals = append(intervals, Interval{
			Start: b.Start.Add(-capability.BufferBefore()),
			End:   b.End.Add(capability.BufferAfter()),
		})
	}
	return intervals
}

// bookingIntervals converts bookings to raw intervals, buffers excluded:
// location capacity counts in-progress services only.
func bookingIntervals(bookings []models.Booking) []Interval {
	intervals := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		intervals = append(intervals, Interval{Start: b.Start, End: b.End})
	}
	return intervals
}

// operatingIntervals materializes the location's daily operating-hours
// envelope over the window.
func operatingIntervals(location *models.Location, window Interval) []Interval {
	var open []Interval
	day := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(),
		0, 0, 0, 0, window.Start.Location())
	for day.Before(window.End) {
		iv := Interval{
			Start: day.Add(time.Duration(location.OpenMinute) * time.Minute),
			End:   day.Add(time.Duration(location.CloseMinute) * time.Minute),
		}
		if clipped, ok := Intersect(iv, window); ok {
			open = append(open, clipped)
		}
		day = day.AddDate(0, 0, 1)
	}
	return open
}
