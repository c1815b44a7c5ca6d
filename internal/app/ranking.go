package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/logging"
)

// DefaultWeeklyCycle is the period between tier resets.
const DefaultWeeklyCycle = 7 * 24 * time.Hour

// TierThreshold is the minimum weekly score for one tier, derived from
// the population each cycle.
type TierThreshold struct {
	Tier      domain.Tier
	MinPoints int
}

// RankingEngine recomputes tiers, distributes reward powerups, and zeroes
// weekly points once per reset cycle. All mutations run behind the
// leaderboard-wide lock shared with the cache rebuilder.
type RankingEngine struct {
	mu       *sync.Mutex
	profiles ProfileStore
	boards   LeaderboardStore
	settings SettingsStore
	cache    RankCache
	notifier Notifier
	rewards  domain.PowerupConfig
	cycle    time.Duration
	log      logging.Logger
	now      func() time.Time
}

func NewRankingEngine(
	mu *sync.Mutex,
	profiles ProfileStore,
	boards LeaderboardStore,
	settings SettingsStore,
	cache RankCache,
	notifier Notifier,
	cycle time.Duration,
	log logging.Logger,
) *RankingEngine {
	if cycle <= 0 {
		cycle = DefaultWeeklyCycle
	}
	return &RankingEngine{
		mu:       mu,
		profiles: profiles,
		boards:   boards,
		settings: settings,
		cache:    cache,
		notifier: notifier,
		rewards:  domain.DefaultPowerupConfig(),
		cycle:    cycle,
		log:      log,
		now:      time.Now,
	}
}

// MaybeReset performs a weekly reset when the cycle has elapsed since the
// last one. A missing settings record is seeded one full cycle in the
// past, so a fresh deployment resets immediately.
func (e *RankingEngine) MaybeReset(ctx context.Context) (bool, error) {
	last, ok, err := e.settings.LastWeeklyReset(ctx)
	if err != nil {
		return false, fmt.Errorf("read last reset: %w", err)
	}
	if !ok {
		last = e.now().Add(-e.cycle)
		if err := e.settings.SetLastWeeklyReset(ctx, last); err != nil {
			return false, fmt.Errorf("seed last reset: %w", err)
		}
	}
	if e.now().Sub(last) < e.cycle {
		return false, nil
	}
	return true, e.Reset(ctx)
}

// Reset runs the full cycle: reassign every user to a tier, grant
// promotion/demotion/top-3 rewards, zero weekly points, clear the tier
// partitions, and advance the reset timestamp. One failing user is logged
// and skipped; the reset completes for everyone else.
func (e *RankingEngine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	profiles, err := e.profiles.All(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	assignments := AssignTiers(profiles)

	byID := make(map[string]*domain.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}

	var errs []error
	for _, tier := range domain.Tiers {
		for i, userID := range assignments[tier] {
			rank := i + 1
			profile, ok := byID[userID]
			if !ok {
				continue
			}
			oldTier := profile.Tier
			profile.Tier = tier

			bundle := domain.Inventory{}
			if oldTier != tier {
				if tier.Outranks(oldTier) {
					bundle.Add(e.rewards.Promotion)
				} else {
					bundle.Add(e.rewards.Demotion)
				}
			}
			if top, ok := e.rewards.Top[rank]; ok {
				bundle.Add(top)
			}
			profile.Powerups.Add(bundle)

			if err := e.profiles.Save(ctx, profile); err != nil {
				e.log.Error(ctx, "weekly reset: save profile failed", "user", userID, "error", err)
				errs = append(errs, err)
				continue
			}
			if oldTier != tier && e.notifier != nil {
				if err := e.notifier.Notify(ctx, userID, tierChangeMessage(oldTier, tier, bundle)); err != nil {
					e.log.Warn(ctx, "weekly reset: notify failed", "user", userID, "error", err)
				}
			}
		}
	}

	now := e.now()
	if err := e.profiles.ZeroWeeklyPoints(ctx, now); err != nil {
		e.log.Error(ctx, "weekly reset: zero weekly points failed", "error", err)
		errs = append(errs, err)
	}
	for _, tier := range domain.Tiers {
		if err := e.boards.Clear(ctx, tier); err != nil {
			e.log.Error(ctx, "weekly reset: clear partition failed", "tier", tier, "error", err)
			errs = append(errs, err)
		}
		if e.cache != nil {
			if err := e.cache.ClearTier(ctx, tier); err != nil {
				e.log.Warn(ctx, "weekly reset: clear cached tier failed", "tier", tier, "error", err)
			}
		}
	}
	if err := e.settings.SetLastWeeklyReset(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("advance last reset: %w", err))
	}
	return errors.Join(errs...)
}

// CalculateDynamicThresholds derives the minimum weekly score for each of
// the eight upper tiers, highest tier first. Tier sizes scale with the
// active share of the population; the lowest tier absorbs whoever meets no
// threshold. Returns nil for an empty population.
func CalculateDynamicThresholds(profiles []*domain.UserProfile) []TierThreshold {
	total := len(profiles)
	if total == 0 {
		return nil
	}

	active := 0
	for _, p := range profiles {
		if p.WeeklyPoints > 0 {
			active++
		}
	}
	activityRatio := float64(active) / float64(total)

	size := int(10 * activityRatio)
	if size < 5 {
		size = 5
	}

	sorted := sortedByWeeklyDesc(profiles)

	upper := upperTiersDesc()
	thresholds := make([]TierThreshold, 0, len(upper))
	for i, tier := range upper {
		idx := (i + 1) * size
		if idx > total-1 {
			idx = total - 1
		}
		thresholds = append(thresholds, TierThreshold{
			Tier:      tier,
			MinPoints: sorted[idx].WeeklyPoints,
		})
	}
	return thresholds
}

// AssignTiers places every user into exactly one tier: the highest tier
// whose threshold their weekly score meets, or the lowest tier when none
// match. Bucket order follows weekly score descending, which is the rank
// order used for top-3 rewards. Duplicate thresholds keep the first-match
// policy: ties land in the higher tier.
func AssignTiers(profiles []*domain.UserProfile) map[domain.Tier][]string {
	buckets := make(map[domain.Tier][]string, len(domain.Tiers))
	for _, tier := range domain.Tiers {
		buckets[tier] = nil
	}
	if len(profiles) == 0 {
		return buckets
	}

	thresholds := CalculateDynamicThresholds(profiles)
	for _, p := range sortedByWeeklyDesc(profiles) {
		assigned := false
		for _, th := range thresholds {
			if p.WeeklyPoints >= th.MinPoints {
				buckets[th.Tier] = append(buckets[th.Tier], p.UserID)
				assigned = true
				break
			}
		}
		if !assigned {
			buckets[domain.Tiers[0]] = append(buckets[domain.Tiers[0]], p.UserID)
		}
	}
	return buckets
}

// upperTiersDesc lists every tier except the lowest, highest first.
func upperTiersDesc() []domain.Tier {
	tiers := make([]domain.Tier, 0, len(domain.Tiers)-1)
	for i := len(domain.Tiers) - 1; i >= 1; i-- {
		tiers = append(tiers, domain.Tiers[i])
	}
	return tiers
}

func sortedByWeeklyDesc(profiles []*domain.UserProfile) []*domain.UserProfile {
	sorted := make([]*domain.UserProfile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WeeklyPoints > sorted[j].WeeklyPoints
	})
	return sorted
}

func tierChangeMessage(oldTier, newTier domain.Tier, rewards domain.Inventory) string {
	msg := fmt.Sprintf("Your tier has changed from %s to %s! ", oldTier, newTier)
	if newTier.Outranks(oldTier) {
		msg += "Congratulations on your promotion!"
	} else {
		msg += "You've been demoted, but don't worry!"
	}
	if rewards.Total() > 0 {
		msg += fmt.Sprintf(" You've received %d reward powerups.", rewards.Total())
	}
	return msg
}
