package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"slotify/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// capSpan is a half-open interval competing for capacity.
type capSpan struct {
	start time.Time
	end   time.Time
}

// maxConcurrent returns the peak number of spans covering any single instant
// of [from, to). Spans are clipped to the window first; an end releases
// capacity before a start claims it at the same instant.
func maxConcurrent(spans []capSpan, from, to time.Time) int {
	type event struct {
		at    time.Time
		delta int
	}
	events := make([]event, 0, 2*len(spans))
	for _, s := range spans {
		start, end := s.start, s.end
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if !start.Before(end) {
			continue
		}
		events = append(events, event{at: start, delta: +1}, event{at: end, delta: -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			return events[i].delta < events[j].delta
		}
		return events[i].at.Before(events[j].at)
	})

	peak, count := 0, 0
	for _, ev := range events {
		count += ev.delta
		if count > peak {
			peak = count
		}
	}
	return peak
}

// CommitBooking inserts the booking inside a single multi-document
// transaction. The guard re-runs the peak-overlap computation against the
// transaction's snapshot: staggered bookings that overlap the window but not
// each other never stack, only true simultaneous coverage counts against the
// limit. The unique index on idempotencyKey is the final backstop: even if
// the lock layer fails open, a racing duplicate commit surfaces as a
// duplicate key error and the original booking is returned instead.
func (repo *MongoBookingRepo) CommitBooking(ctx context.Context, booking *models.Booking, guard CommitGuard) (*models.Booking, error) {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	holding := []string{models.BookingStatusPending, models.BookingStatusConfirmed}

	txnFn := func(sc mongo.SessionContext) error {
		// An existing booking competes if its buffer-expanded interval
		// touches the candidate's window, so the fetch is widened by the
		// buffers before expansion.
		resourceFilter := overlapFilter("resourceId", booking.ResourceID,
			guard.ResourceWindowStart.Add(-guard.BufferAfter),
			guard.ResourceWindowEnd.Add(guard.BufferBefore), holding)
		cursor, err := repo.coll.Find(sc, resourceFilter)
		if err != nil {
			return fmt.Errorf("resource capacity re-check failed: %w", err)
		}
		var existing []models.Booking
		if err := cursor.All(sc, &existing); err != nil {
			return fmt.Errorf("resource capacity re-check failed: %w", err)
		}
		spans := make([]capSpan, 0, len(existing))
		for _, b := range existing {
			spans = append(spans, capSpan{
				start: b.Start.Add(-guard.BufferBefore),
				end:   b.End.Add(guard.BufferAfter),
			})
		}
		if maxConcurrent(spans, guard.ResourceWindowStart, guard.ResourceWindowEnd) >= guard.ConcurrencyLimit {
			return ErrCapacityExceeded
		}

		if guard.LocationCapacity > 0 {
			// Location capacity counts raw service time, buffers excluded.
			locationFilter := overlapFilter("locationId", booking.LocationID,
				booking.Start, booking.End, holding)
			cursor, err := repo.coll.Find(sc, locationFilter)
			if err != nil {
				return fmt.Errorf("location capacity re-check failed: %w", err)
			}
			var atLocation []models.Booking
			if err := cursor.All(sc, &atLocation); err != nil {
				return fmt.Errorf("location capacity re-check failed: %w", err)
			}
			spans = spans[:0]
			for _, b := range atLocation {
				spans = append(spans, capSpan{start: b.Start, end: b.End})
			}
			if maxConcurrent(spans, booking.Start, booking.End) >= guard.LocationCapacity {
				return ErrCapacityExceeded
			}
		}

		if _, err := repo.coll.InsertOne(sc, booking); err != nil {
			return err
		}
		return nil
	}

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if err == nil {
		return booking, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		// Same idempotency key already committed: return the original.
		existing, findErr := repo.FindByIdempotencyKey(ctx, booking.IdempotencyKey)
		if findErr != nil {
			return nil, fmt.Errorf("duplicate idempotency key but original not found: %w", findErr)
		}
		return existing, nil
	}
	if errors.Is(err, ErrCapacityExceeded) {
		return nil, err
	}
	return nil, fmt.Errorf("booking transaction failed: %w", err)
}
