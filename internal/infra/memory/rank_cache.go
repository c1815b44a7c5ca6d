package memory

import (
	"context"
	"sync"

	"ultimate-trivia/internal/domain"
)

// RankCache is an in-memory stand-in for the ordered-set cache when no
// Redis is configured.
type RankCache struct {
	mu      sync.RWMutex
	tiers   map[domain.Tier]map[string]int
	overall map[string]int
}

func NewRankCache() *RankCache {
	return &RankCache{
		tiers:   make(map[domain.Tier]map[string]int),
		overall: make(map[string]int),
	}
}

func (c *RankCache) StoreTier(_ context.Context, tier domain.Tier, entries []domain.RankedUser) error {
	ranks := make(map[string]int, len(entries))
	for _, e := range entries {
		ranks[e.UserID] = e.Rank
	}
	c.mu.Lock()
	c.tiers[tier] = ranks
	c.mu.Unlock()
	return nil
}

func (c *RankCache) StoreOverall(_ context.Context, entries []domain.RankedUser) error {
	ranks := make(map[string]int, len(entries))
	for _, e := range entries {
		ranks[e.UserID] = e.Rank
	}
	c.mu.Lock()
	c.overall = ranks
	c.mu.Unlock()
	return nil
}

func (c *RankCache) TierRank(_ context.Context, tier domain.Tier, userID string) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rank, ok := c.tiers[tier][userID]
	return rank, ok, nil
}

func (c *RankCache) OverallRank(_ context.Context, userID string) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rank, ok := c.overall[userID]
	return rank, ok, nil
}

func (c *RankCache) ClearTier(_ context.Context, tier domain.Tier) error {
	c.mu.Lock()
	delete(c.tiers, tier)
	c.mu.Unlock()
	return nil
}
