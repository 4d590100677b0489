package rulesRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slotify/models"
	"slotify/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const ruleCachePrefix = "rules:"

// CachedRuleRepo serves schedule rules from a short-TTL Redis cache in front
// of another repository. Staleness here is harmless: a stale rule set can
// only cause an extra validation-reject cycle at commit time, never an
// oversold slot.
type CachedRuleRepo struct {
	Inner  RuleRepository
	Client *redis.Client
	TTL    time.Duration
}

// NewCachedRuleRepo wraps inner with a Redis cache.
func NewCachedRuleRepo(inner RuleRepository, client *redis.Client, ttl time.Duration) *CachedRuleRepo {
	return &CachedRuleRepo{Inner: inner, Client: client, TTL: ttl}
}

func (repo *CachedRuleRepo) GetRulesInWindow(ctx context.Context, resourceID string, from, to time.Time) ([]models.ScheduleRule, error) {
	logger := utils.GetLogger()
	key := fmt.Sprintf("%s%s:%d:%d", ruleCachePrefix, resourceID, from.Unix(), to.Unix())

	if data, err := repo.Client.Get(ctx, key).Result(); err == nil {
		var rules []models.ScheduleRule
		if err := json.Unmarshal([]byte(data), &rules); err == nil {
			return rules, nil
		}
		logger.Warn("rule cache entry corrupt, refetching", zap.String("key", key))
	}

	rules, err := repo.Inner.GetRulesInWindow(ctx, resourceID, from, to)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rules); err == nil {
		if err := repo.Client.Set(ctx, key, data, repo.TTL).Err(); err != nil {
			logger.Warn("failed to cache schedule rules", zap.String("key", key), zap.Error(err))
		}
	}
	return rules, nil
}
