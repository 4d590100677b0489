package availability

import (
	"sort"
	"time"
)

// sweepEvent is a +1/-1 coverage change at a point in time. A booking ending
// at t releases capacity at t, so at equal instants ends sort before starts.
type sweepEvent struct {
	at    time.Time
	delta int
}

// SaturatedIntervals returns the sub-intervals where at least limit of the
// given intervals overlap simultaneously. With limit 1 this degenerates to
// Merge. The sweep is O(n log n) in the number of intervals and never walks
// the timeline point by point.
func SaturatedIntervals(intervals []Interval, limit int) []Interval {
	if len(intervals) == 0 || limit <= 0 {
		return nil
	}
	if limit == 1 {
		return Merge(intervals)
	}

	events := make([]sweepEvent, 0, 2*len(intervals))
	for _, iv := range intervals {
		events = append(events, sweepEvent{at: iv.Start, delta: +1})
		events = append(events, sweepEvent{at: iv.End, delta: -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			return events[i].delta < events[j].delta
		}
		return events[i].at.Before(events[j].at)
	})

	var busy []Interval
	count := 0
	var saturatedFrom time.Time
	for _, ev := range events {
		prev := count
		count += ev.delta
		if prev < limit && count >= limit {
			saturatedFrom = ev.at
		}
		if prev >= limit && count < limit {
			busy = append(busy, Interval{Start: saturatedFrom, End: ev.at})
		}
	}
	return Merge(busy)
}
