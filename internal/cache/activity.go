package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"novara/internal/model"
)

const (
	// ActivityKeyPrefix is the key prefix for per-user activity timelines
	ActivityKeyPrefix = "activity:user:"

	// ActivityCap is the maximum number of entries kept per user
	ActivityCap = 200

	// ActivityTTL is refreshed on every write (30 days)
	ActivityTTL = 30 * 24 * time.Hour
)

// ActivityCache stores recent marketplace activity per user.
type ActivityCache interface {
	// Add records an entry in the user's timeline, trimming it to ActivityCap.
	Add(ctx context.Context, userID int64, activity model.Activity) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, userID int64, limit int) ([]model.Activity, error)
}

// RedisActivityCache keeps each timeline in a sorted set scored by event time.
type RedisActivityCache struct {
	client *redis.Client
}

// NewActivityCache creates a new ActivityCache backed by Redis.
func NewActivityCache(client *redis.Client) ActivityCache {
	return &RedisActivityCache{client: client}
}

func activityKey(userID int64) string {
	return fmt.Sprintf("%s%d", ActivityKeyPrefix, userID)
}

// Add uses a pipeline: ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE (refresh TTL).
func (c *RedisActivityCache) Add(ctx context.Context, userID int64, activity model.Activity) error {
	member, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	key := activityKey(userID)
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(activity.Timestamp), Member: string(member)})
	// rank 0 is the oldest entry; keep the newest ActivityCap
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-ActivityCap-1))
	pipe.Expire(ctx, key, ActivityTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add activity: %w", err)
	}
	return nil
}

func (c *RedisActivityCache) Recent(ctx context.Context, userID int64, limit int) ([]model.Activity, error) {
	members, err := c.client.ZRevRange(ctx, activityKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	activities := make([]model.Activity, 0, len(members))
	for _, m := range members {
		var a model.Activity
		if err := json.Unmarshal([]byte(m), &a); err != nil {
			return nil, fmt.Errorf("unmarshal activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, nil
}
