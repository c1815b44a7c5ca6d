package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/logging"
)

// DefaultRefreshInterval bounds how stale cached ranks may be.
const DefaultRefreshInterval = 5 * time.Minute

// LeaderboardService keeps a fast, eventually-consistent projection of the
// per-tier and overall rankings: an in-process map for sub-millisecond
// reads, mirrored into the ordered-set cache. Rebuilds serialize behind
// the leaderboard-wide lock; reads never take it.
type LeaderboardService struct {
	mu       *sync.Mutex
	profiles ProfileStore
	boards   LeaderboardStore
	cache    RankCache
	log      logging.Logger

	stateMu      sync.RWMutex
	tierBoards   map[domain.Tier][]domain.RankedUser
	overall      []domain.RankedUser
	tierRanks    map[domain.Tier]map[string]int
	overallRanks map[string]int
}

func NewLeaderboardService(mu *sync.Mutex, profiles ProfileStore, boards LeaderboardStore, cache RankCache, log logging.Logger) *LeaderboardService {
	return &LeaderboardService{
		mu:       mu,
		profiles: profiles,
		boards:   boards,
		cache:    cache,
		log:      log,
	}
}

// Refresh rebuilds every tier projection and the overall ranking from the
// authoritative store. Ranks handed out afterwards are consistent with
// this refresh until the next one.
func (l *LeaderboardService) Refresh(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tierBoards := make(map[domain.Tier][]domain.RankedUser, len(domain.Tiers))
	tierRanks := make(map[domain.Tier]map[string]int, len(domain.Tiers))
	for _, tier := range domain.Tiers {
		entries, err := l.boards.Entries(ctx, tier)
		if err != nil {
			return fmt.Errorf("read %s partition: %w", tier, err)
		}
		ranked := rankEntries(entries)
		if l.cache != nil {
			if err := l.cache.StoreTier(ctx, tier, ranked); err != nil {
				l.log.Warn(ctx, "cache tier leaderboard failed", "tier", tier, "error", err)
			}
		}
		tierBoards[tier] = ranked
		tierRanks[tier] = rankIndex(ranked)
	}

	overall, err := l.overallFromProfiles(ctx)
	if err != nil {
		return err
	}
	if l.cache != nil {
		if err := l.cache.StoreOverall(ctx, overall); err != nil {
			l.log.Warn(ctx, "cache overall leaderboard failed", "error", err)
		}
	}

	l.stateMu.Lock()
	l.tierBoards = tierBoards
	l.tierRanks = tierRanks
	l.overall = overall
	l.overallRanks = rankIndex(overall)
	l.stateMu.Unlock()
	return nil
}

// TierLeaderboard returns the ranked weekly board for one tier, falling
// back to a cold read of the authoritative partition before the first
// refresh. An unknown tier yields an error; an empty board is not one.
func (l *LeaderboardService) TierLeaderboard(ctx context.Context, tier domain.Tier) ([]domain.RankedUser, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}

	l.stateMu.RLock()
	board, ok := l.tierBoards[tier]
	l.stateMu.RUnlock()
	if ok {
		return board, nil
	}

	entries, err := l.boards.Entries(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("read %s partition: %w", tier, err)
	}
	return rankEntries(entries), nil
}

// OverallLeaderboard ranks every profile by lifetime points, an axis
// deliberately distinct from the weekly tier boards.
func (l *LeaderboardService) OverallLeaderboard(ctx context.Context) ([]domain.RankedUser, error) {
	l.stateMu.RLock()
	overall := l.overall
	l.stateMu.RUnlock()
	if overall != nil {
		return overall, nil
	}
	return l.overallFromProfiles(ctx)
}

// UserRank returns the user's 1-based rank within a tier. Reads prefer
// the in-process projection, then the ordered-set cache; total absence is
// (0, false) rather than an error.
func (l *LeaderboardService) UserRank(ctx context.Context, tier domain.Tier, userID string) (int, bool, error) {
	l.stateMu.RLock()
	ranks, ok := l.tierRanks[tier]
	l.stateMu.RUnlock()
	if ok {
		if rank, found := ranks[userID]; found {
			return rank, true, nil
		}
		return 0, false, nil
	}
	if l.cache != nil {
		return l.cache.TierRank(ctx, tier, userID)
	}
	return 0, false, nil
}

// OverallRank mirrors UserRank for the lifetime ranking.
func (l *LeaderboardService) OverallRank(ctx context.Context, userID string) (int, bool, error) {
	l.stateMu.RLock()
	ranks := l.overallRanks
	l.stateMu.RUnlock()
	if ranks != nil {
		if rank, found := ranks[userID]; found {
			return rank, true, nil
		}
		return 0, false, nil
	}
	if l.cache != nil {
		return l.cache.OverallRank(ctx, userID)
	}
	return 0, false, nil
}

func (l *LeaderboardService) overallFromProfiles(ctx context.Context) ([]domain.RankedUser, error) {
	profiles, err := l.profiles.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].TotalPoints > profiles[j].TotalPoints
	})
	ranked := make([]domain.RankedUser, 0, len(profiles))
	for i, p := range profiles {
		ranked = append(ranked, domain.RankedUser{UserID: p.UserID, Points: p.TotalPoints, Rank: i + 1})
	}
	return ranked, nil
}

func rankEntries(entries []domain.TierLeaderboardEntry) []domain.RankedUser {
	ranked := make([]domain.RankedUser, 0, len(entries))
	for i, e := range entries {
		ranked = append(ranked, domain.RankedUser{UserID: e.UserID, Points: e.Points, Rank: i + 1})
	}
	return ranked
}

func rankIndex(ranked []domain.RankedUser) map[string]int {
	index := make(map[string]int, len(ranked))
	for _, r := range ranked {
		index[r.UserID] = r.Rank
	}
	return index
}
