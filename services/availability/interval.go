package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidInterval is returned when an interval's start does not precede
// its end. All algebra below assumes half-open [start, end) intervals.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a half-open [Start, End) span of time.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval builds a validated interval.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Validate reports whether the interval is well-formed.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval,
			iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching endpoints ([a,b) and [b,c)) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Contains reports whether other lies fully inside iv.
func (iv Interval) Contains(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Merge coalesces a set of intervals into the minimal sorted non-overlapping
// set. Adjacent intervals ([a,b) followed by [b,c)) are joined.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Interval{sorted[0]}
	for _, next := range sorted[1:] {
		current := &merged[len(merged)-1]
		if !next.Start.After(current.End) {
			if next.End.After(current.End) {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// Subtract removes the busy intervals from base and returns the remaining
// free intervals in ascending order. Busy intervals need not be sorted or
// disjoint.
func Subtract(base Interval, busy []Interval) []Interval {
	if len(busy) == 0 {
		return []Interval{base}
	}
	blocked := Merge(busy)

	var free []Interval
	cursor := base.Start
	for _, b := range blocked {
		if !b.End.After(base.Start) {
			continue
		}
		if !b.Start.Before(base.End) {
			break
		}
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(base.End) {
		free = append(free, Interval{Start: cursor, End: base.End})
	}
	return free
}

// SubtractAll subtracts the busy set from every interval of base.
func SubtractAll(base, busy []Interval) []Interval {
	var free []Interval
	for _, iv := range base {
		free = append(free, Subtract(iv, busy)...)
	}
	return free
}

// Intersect returns the overlap of two intervals, if any.
func Intersect(a, b Interval) (Interval, bool) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// IntersectSets intersects two sorted non-overlapping interval sets.
func IntersectSets(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if overlap, ok := Intersect(a[i], b[j]); ok {
			out = append(out, overlap)
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}
