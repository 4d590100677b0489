package availability

import (
	"testing"
)

func TestSaturatedIntervalsLimitOneIsMerge(t *testing.T) {
	got := SaturatedIntervals([]Interval{iv(9, 0, 10, 0), iv(9, 30, 11, 0)}, 1)
	sameIntervals(t, got, []Interval{iv(9, 0, 11, 0)})
}

func TestSaturatedIntervalsCountsOverlap(t *testing.T) {
	set := []Interval{
		iv(9, 0, 11, 0),
		iv(10, 0, 12, 0),
		iv(10, 30, 11, 30),
	}
	// Two concurrent in [10:00, 12:00), three in [10:30, 11:00).
	sameIntervals(t, SaturatedIntervals(set, 2), []Interval{iv(10, 0, 12, 0)})
	sameIntervals(t, SaturatedIntervals(set, 3), []Interval{iv(10, 30, 11, 0)})
	if got := SaturatedIntervals(set, 4); len(got) != 0 {
		t.Fatalf("limit above peak overlap: got %v, want empty", got)
	}
}

func TestSaturatedIntervalsEndReleasesAtSameInstant(t *testing.T) {
	// One booking ends exactly when another starts; capacity 1 is never
	// exceeded at that instant, so limit 2 stays unsaturated.
	set := []Interval{iv(9, 0, 10, 0), iv(10, 0, 11, 0)}
	if got := SaturatedIntervals(set, 2); len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestSaturatedIntervalsEmptyAndZeroLimit(t *testing.T) {
	if got := SaturatedIntervals(nil, 2); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
	if got := SaturatedIntervals([]Interval{iv(9, 0, 10, 0)}, 0); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
