package rulesRepo

import (
	"context"
	"time"

	"slotify/models"
)

// RuleRepository supplies the schedule rules effective for a resource over a
// window, already materialized into concrete intervals. Read-only: rules are
// authored by the administrative subsystem.
type RuleRepository interface {
	GetRulesInWindow(ctx context.Context, resourceID string, from, to time.Time) ([]models.ScheduleRule, error)
}
