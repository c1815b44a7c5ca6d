package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ultimate-trivia/internal/domain"
)

// LeaderboardStore keeps the per-tier weekly partitions in memory.
type LeaderboardStore struct {
	mu    sync.RWMutex
	tiers map[domain.Tier]map[string]domain.TierLeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{
		tiers: make(map[domain.Tier]map[string]domain.TierLeaderboardEntry),
	}
}

func (s *LeaderboardStore) Upsert(_ context.Context, tier domain.Tier, entry domain.TierLeaderboardEntry) error {
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	partition, ok := s.tiers[tier]
	if !ok {
		partition = make(map[string]domain.TierLeaderboardEntry)
		s.tiers[tier] = partition
	}
	partition[entry.UserID] = entry
	return nil
}

func (s *LeaderboardStore) Entries(_ context.Context, tier domain.Tier) ([]domain.TierLeaderboardEntry, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	partition := s.tiers[tier]
	entries := make([]domain.TierLeaderboardEntry, 0, len(partition))
	for _, e := range partition {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}

func (s *LeaderboardStore) Clear(_ context.Context, tier domain.Tier) error {
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tiers, tier)
	return nil
}
