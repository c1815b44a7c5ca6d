package redis

import (
	"context"
	"fmt"

	"ultimate-trivia/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RankCache projects leaderboards into Redis for O(log n) rank lookups:
//
//	ZADD leaderboard:{tier}     user -> points
//	HSET user:{id}              tier, points, rank
//	ZADD leaderboard:overall    user -> lifetime points
//	HSET user:{id}:overall      total_points, rank
type RankCache struct {
	client *redis.Client
}

func NewRankCache(client *redis.Client) *RankCache {
	return &RankCache{client: client}
}

func (c *RankCache) StoreTier(ctx context.Context, tier domain.Tier, entries []domain.RankedUser) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, tierKey(tier))
	for _, e := range entries {
		pipe.HSet(ctx, userKey(e.UserID), map[string]interface{}{
			"tier":   tier.String(),
			"points": e.Points,
			"rank":   e.Rank,
		})
		pipe.ZAdd(ctx, tierKey(tier), redis.Z{Score: float64(e.Points), Member: e.UserID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache %s leaderboard: %w", tier, err)
	}
	return nil
}

func (c *RankCache) StoreOverall(ctx context.Context, entries []domain.RankedUser) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, overallKey)
	for _, e := range entries {
		pipe.HSet(ctx, userOverallKey(e.UserID), map[string]interface{}{
			"total_points": e.Points,
			"rank":         e.Rank,
		})
		pipe.ZAdd(ctx, overallKey, redis.Z{Score: float64(e.Points), Member: e.UserID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache overall leaderboard: %w", err)
	}
	return nil
}

// TierRank reads the 1-based rank from the ordered set. Absence is
// (0, false), not an error.
func (c *RankCache) TierRank(ctx context.Context, tier domain.Tier, userID string) (int, bool, error) {
	return c.revRank(ctx, tierKey(tier), userID)
}

func (c *RankCache) OverallRank(ctx context.Context, userID string) (int, bool, error) {
	return c.revRank(ctx, overallKey, userID)
}

func (c *RankCache) ClearTier(ctx context.Context, tier domain.Tier) error {
	if err := c.client.Del(ctx, tierKey(tier)).Err(); err != nil {
		return fmt.Errorf("clear %s leaderboard: %w", tier, err)
	}
	return nil
}

func (c *RankCache) revRank(ctx context.Context, key, userID string) (int, bool, error) {
	rank, err := c.client.ZRevRank(ctx, key, userID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("rank lookup: %w", err)
	}
	return int(rank) + 1, true, nil
}

const overallKey = "leaderboard:overall"

func tierKey(tier domain.Tier) string {
	return "leaderboard:" + tier.String()
}

func userKey(userID string) string {
	return "user:" + userID
}

func userOverallKey(userID string) string {
	return "user:" + userID + ":overall"
}
