package availability

import (
	"testing"

	"slotify/models"
)

func recurring(available bool, startHour, endHour int) models.ScheduleRule {
	return models.ScheduleRule{
		Kind:         models.RuleKindRecurring,
		Availability: available,
		Start:        at(startHour, 0),
		End:          at(endHour, 0),
	}
}

func exception(available bool, startHour, endHour int) models.ScheduleRule {
	return models.ScheduleRule{
		Kind:         models.RuleKindException,
		Availability: available,
		Start:        at(startHour, 0),
		End:          at(endHour, 0),
	}
}

func TestResolveRulesRecurringWithBlackout(t *testing.T) {
	got := ResolveRules([]models.ScheduleRule{
		recurring(true, 9, 17),
		recurring(false, 12, 13),
	}, iv(0, 0, 24, 0))
	sameIntervals(t, got, []Interval{iv(9, 0, 12, 0), iv(13, 0, 17, 0)})
}

func TestResolveRulesExceptionBlackoutOverridesRecurring(t *testing.T) {
	// A one-off blackout wins over the weekly availability it covers.
	got := ResolveRules([]models.ScheduleRule{
		recurring(true, 9, 17),
		exception(false, 10, 14),
	}, iv(0, 0, 24, 0))
	sameIntervals(t, got, []Interval{iv(9, 0, 10, 0), iv(14, 0, 17, 0)})
}

func TestResolveRulesExceptionAvailabilityOverridesRecurringBlackout(t *testing.T) {
	// A one-off opening wins over a weekly blackout it covers.
	got := ResolveRules([]models.ScheduleRule{
		recurring(true, 9, 17),
		recurring(false, 12, 14),
		exception(true, 12, 14),
	}, iv(0, 0, 24, 0))
	sameIntervals(t, got, []Interval{iv(9, 0, 17, 0)})
}

func TestResolveRulesExceptionOutsideRecurring(t *testing.T) {
	// An exception can open hours the weekly schedule never had.
	got := ResolveRules([]models.ScheduleRule{
		recurring(true, 9, 12),
		exception(true, 18, 20),
	}, iv(0, 0, 24, 0))
	sameIntervals(t, got, []Interval{iv(9, 0, 12, 0), iv(18, 0, 20, 0)})
}

func TestResolveRulesPrecedenceWithinLayer(t *testing.T) {
	blackout := recurring(false, 12, 14)
	reopening := recurring(true, 12, 13)
	reopening.Precedence = 1

	// The higher-precedence availability wins back part of the blackout.
	got := ResolveRules([]models.ScheduleRule{
		recurring(true, 9, 17),
		blackout,
		reopening,
	}, iv(0, 0, 24, 0))
	sameIntervals(t, got, []Interval{iv(9, 0, 13, 0), iv(14, 0, 17, 0)})
}

func TestResolveRulesEqualPrecedenceBlackoutWins(t *testing.T) {
	got := ResolveRules([]models.ScheduleRule{
		recurring(false, 12, 14),
		recurring(true, 9, 17),
	}, iv(0, 0, 24, 0))
	sameIntervals(t, got, []Interval{iv(9, 0, 12, 0), iv(14, 0, 17, 0)})
}

func TestResolveRulesClipsToWindow(t *testing.T) {
	got := ResolveRules([]models.ScheduleRule{
		recurring(true, 9, 17),
	}, iv(10, 0, 12, 0))
	sameIntervals(t, got, []Interval{iv(10, 0, 12, 0)})
}

func TestResolveRulesNoRules(t *testing.T) {
	if got := ResolveRules(nil, iv(0, 0, 24, 0)); len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}
