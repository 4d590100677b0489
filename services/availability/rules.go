package availability

import (
	"sort"

	"slotify/models"
)

// ResolveRules reduces a resource's effective schedule rules over a window to
// the merged set of intervals where the resource is available.
//
// Precedence runs on two axes. Exception rules (one-off, date-bound) override
// recurring weekly rules for every instant they govern, whether the exception
// marks the resource available or blacked out. Within a layer, rules with a
// higher Precedence value override lower ones; at equal precedence a blackout
// beats an availability.
func ResolveRules(rules []models.ScheduleRule, window Interval) []Interval {
	var recurring, exceptions []models.ScheduleRule
	var exceptionSpan []Interval

	for _, rule := range rules {
		iv, ok := Intersect(Interval{Start: rule.Start, End: rule.End}, window)
		if !ok {
			continue
		}
		rule.Start, rule.End = iv.Start, iv.End
		if rule.Kind == models.RuleKindException {
			exceptions = append(exceptions, rule)
			exceptionSpan = append(exceptionSpan, iv)
		} else {
			recurring = append(recurring, rule)
		}
	}

	// Recurring layer first, then carve out everything an exception touches.
	base := SubtractAll(resolveLayer(recurring), Merge(exceptionSpan))

	// Exception layer replaces the carved-out span.
	return Merge(append(base, resolveLayer(exceptions)...))
}

// resolveLayer folds one layer of rules in ascending precedence: each rule
// overrides whatever lower-precedence rules said about its interval.
// Availabilities apply before blackouts at the same precedence.
func resolveLayer(rules []models.ScheduleRule) []Interval {
	sorted := make([]models.ScheduleRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Precedence != sorted[j].Precedence {
			return sorted[i].Precedence < sorted[j].Precedence
		}
		return sorted[i].Availability && !sorted[j].Availability
	})

	var avail []Interval
	for _, rule := range sorted {
		iv := Interval{Start: rule.Start, End: rule.End}
		if rule.Availability {
			avail = Merge(append(avail, iv))
		} else {
			avail = SubtractAll(avail, []Interval{iv})
		}
	}
	return avail
}
