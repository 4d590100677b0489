package availability

import (
	"errors"
	"testing"
	"time"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func iv(startHour, startMin, endHour, endMin int) Interval {
	return Interval{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

func sameIntervals(t *testing.T, got, want []Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d intervals, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("interval %d: got [%v, %v), want [%v, %v)",
				i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestNewIntervalRejectsEmptyAndReversed(t *testing.T) {
	if _, err := NewInterval(at(10, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("empty interval: got %v, want ErrInvalidInterval", err)
	}
	if _, err := NewInterval(at(11, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("reversed interval: got %v, want ErrInvalidInterval", err)
	}
	if _, err := NewInterval(at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("valid interval: unexpected error %v", err)
	}
}

func TestOverlapsTouchingEndpoints(t *testing.T) {
	a := iv(9, 0, 10, 0)
	b := iv(10, 0, 11, 0)
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatal("touching half-open intervals must not overlap")
	}
	c := iv(9, 30, 10, 30)
	if !a.Overlaps(c) {
		t.Fatal("expected overlap")
	}
}

func TestMergeCoalescesOverlappingAndAdjacent(t *testing.T) {
	got := Merge([]Interval{
		iv(13, 0, 14, 0),
		iv(9, 0, 10, 0),
		iv(9, 30, 11, 0),
		iv(11, 0, 12, 0), // adjacent, joins the previous run
	})
	sameIntervals(t, got, []Interval{iv(9, 0, 12, 0), iv(13, 0, 14, 0)})
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestSubtractCarvesHoles(t *testing.T) {
	got := Subtract(iv(9, 0, 17, 0), []Interval{
		iv(10, 0, 11, 0),
		iv(12, 0, 13, 0),
		iv(8, 0, 9, 30),   // clips the left edge
		iv(16, 30, 18, 0), // clips the right edge
	})
	sameIntervals(t, got, []Interval{
		iv(9, 30, 10, 0),
		iv(11, 0, 12, 0),
		iv(13, 0, 16, 30),
	})
}

func TestSubtractFullCover(t *testing.T) {
	got := Subtract(iv(9, 0, 12, 0), []Interval{iv(8, 0, 13, 0)})
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestSubtractSelfIsEmpty(t *testing.T) {
	set := []Interval{iv(9, 0, 10, 30), iv(11, 0, 12, 0), iv(9, 45, 11, 15)}
	merged := Merge(set)
	if got := SubtractAll(merged, merged); len(got) != 0 {
		t.Fatalf("subtracting a set from itself left %v", got)
	}
}

func TestIntersect(t *testing.T) {
	got, ok := Intersect(iv(9, 0, 11, 0), iv(10, 0, 12, 0))
	if !ok {
		t.Fatal("expected an intersection")
	}
	sameIntervals(t, []Interval{got}, []Interval{iv(10, 0, 11, 0)})

	if _, ok := Intersect(iv(9, 0, 10, 0), iv(10, 0, 11, 0)); ok {
		t.Fatal("touching intervals must not intersect")
	}
}

func TestIntersectSets(t *testing.T) {
	a := []Interval{iv(9, 0, 11, 0), iv(12, 0, 14, 0)}
	b := []Interval{iv(10, 0, 12, 30), iv(13, 30, 15, 0)}
	sameIntervals(t, IntersectSets(a, b), []Interval{
		iv(10, 0, 11, 0),
		iv(12, 0, 12, 30),
		iv(13, 30, 14, 0),
	})
}
