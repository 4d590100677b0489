package rulesRepo

import (
	"context"
	"fmt"
	"time"

	"slotify/database"
	"slotify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const dateLayout = "2006-01-02"

// ruleDoc is the stored shape of a schedule rule: a weekly recurring window
// (weekday + minutes from midnight) or a one-off exception bound to a date.
type ruleDoc struct {
	ID           string `bson:"id"`
	ResourceID   string `bson:"resourceId"`
	Weekday      int    `bson:"weekday"`            // time.Weekday, recurring rules only
	RuleDate     string `bson:"ruleDate,omitempty"` // "2006-01-02", exception rules only
	StartMinute  int    `bson:"startMinute"`
	EndMinute    int    `bson:"endMinute"`
	Availability bool   `bson:"availability"`
	Precedence   int    `bson:"precedence"`
}

// MongoRuleRepo implements RuleRepository using MongoDB.
type MongoRuleRepo struct {
	coll *mongo.Collection
}

// NewMongoRuleRepo constructs a new instance of MongoRuleRepo.
func NewMongoRuleRepo() *MongoRuleRepo {
	return &MongoRuleRepo{coll: database.DB().Collection("schedule_rules")}
}

// GetRulesInWindow fetches the rules touching [from, to) and materializes
// each into concrete intervals, one per day the rule fires on.
func (repo *MongoRuleRepo) GetRulesInWindow(ctx context.Context, resourceID string, from, to time.Time) ([]models.ScheduleRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dates := windowDates(from, to)
	filter := bson.M{
		"resourceId": resourceID,
		"$or": []bson.M{
			{"ruleDate": bson.M{"$in": dates}},
			{"ruleDate": bson.M{"$exists": false}},
			{"ruleDate": ""},
		},
	}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching schedule rules for resource %s: %w", resourceID, err)
	}
	defer cursor.Close(ctx)

	var docs []ruleDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding schedule rules: %w", err)
	}

	var rules []models.ScheduleRule
	for _, doc := range docs {
		rules = append(rules, materialize(doc, from, to)...)
	}
	return rules, nil
}

// windowDates lists every calendar date the window touches.
func windowDates(from, to time.Time) []string {
	var dates []string
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for day.Before(to) {
		dates = append(dates, day.Format(dateLayout))
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// materialize instantiates a stored rule into concrete intervals within the
// window. Recurring rules fire on every matching weekday; exception rules
// fire once on their date.
func materialize(doc ruleDoc, from, to time.Time) []models.ScheduleRule {
	var out []models.ScheduleRule
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for day.Before(to) {
		fires := false
		kind := models.RuleKindRecurring
		if doc.RuleDate != "" {
			fires = doc.RuleDate == day.Format(dateLayout)
			kind = models.RuleKindException
		} else {
			fires = int(day.Weekday()) == doc.Weekday
		}
		if fires {
			start := day.Add(time.Duration(doc.StartMinute) * time.Minute)
			end := day.Add(time.Duration(doc.EndMinute) * time.Minute)
			if start.Before(to) && end.After(from) {
				out = append(out, models.ScheduleRule{
					ID:           doc.ID,
					ResourceID:   doc.ResourceID,
					Kind:         kind,
					Availability: doc.Availability,
					Precedence:   doc.Precedence,
					Start:        start,
					End:          end,
				})
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
