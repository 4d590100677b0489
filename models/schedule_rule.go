package models

import "time"

// Rule kinds. Exception rules are one-off (tied to a concrete date) and
// override recurring weekly rules for the instants they cover.
const (
	RuleKindRecurring = "recurring"
	RuleKindException = "exception"
)

// ScheduleRule is a concrete rule interval effective for a resource,
// already materialized over the queried window by the rule store.
// Availability true marks the resource bookable; false marks a blackout.
type ScheduleRule struct {
	ID           string    `bson:"id" json:"id"`
	ResourceID   string    `bson:"resourceId" json:"resourceId"`
	Kind         string    `bson:"kind" json:"kind"`
	Availability bool      `bson:"availability" json:"availability"`
	Precedence   int       `bson:"precedence" json:"precedence"`
	Start        time.Time `bson:"start" json:"start"`
	End          time.Time `bson:"end" json:"end"`
}
