package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/infra/memory"
	"ultimate-trivia/internal/logging"
)

func seedProfiles(t *testing.T, store *memory.ProfileStore, n int) []*domain.UserProfile {
	t.Helper()
	ctx := context.Background()
	profiles := make([]*domain.UserProfile, 0, n)
	for i := 0; i < n; i++ {
		p := domain.NewUserProfile(fmt.Sprintf("user-%02d", i), time.Now())
		p.WeeklyPoints = (n - i) * 10
		if err := store.Save(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
		profiles = append(profiles, p)
	}
	return profiles
}

func TestAssignTiersTotalAndDisjoint(t *testing.T) {
	profiles := make([]*domain.UserProfile, 0, 60)
	for i := 0; i < 60; i++ {
		p := domain.NewUserProfile(fmt.Sprintf("user-%02d", i), time.Now())
		p.WeeklyPoints = (60 - i) * 10
		profiles = append(profiles, p)
	}

	buckets := app.AssignTiers(profiles)

	seen := make(map[string]domain.Tier)
	for tier, users := range buckets {
		for _, u := range users {
			if prev, dup := seen[u]; dup {
				t.Fatalf("user %s assigned to both %s and %s", u, prev, tier)
			}
			seen[u] = tier
		}
	}
	if len(seen) != len(profiles) {
		t.Fatalf("expected every user assigned, got %d of %d", len(seen), len(profiles))
	}

	// Everyone is active, so groups of 10 peel off from the top.
	if len(buckets[domain.TierTitanium]) == 0 {
		t.Fatal("top scorers must land in the highest tier")
	}
	if seen["user-00"] != domain.TierTitanium {
		t.Fatalf("best player should be %s, got %s", domain.TierTitanium, seen["user-00"])
	}
}

func TestAssignTiersZeroUsers(t *testing.T) {
	if ths := app.CalculateDynamicThresholds(nil); ths != nil {
		t.Fatalf("expected nil thresholds, got %v", ths)
	}
	buckets := app.AssignTiers(nil)
	for tier, users := range buckets {
		if len(users) != 0 {
			t.Fatalf("tier %s not empty: %v", tier, users)
		}
	}
	if len(buckets) != len(domain.Tiers) {
		t.Fatalf("expected a bucket per tier, got %d", len(buckets))
	}
}

func TestCalculateDynamicThresholdsOrientation(t *testing.T) {
	profiles := make([]*domain.UserProfile, 0, 30)
	for i := 0; i < 30; i++ {
		p := domain.NewUserProfile(fmt.Sprintf("user-%02d", i), time.Now())
		p.WeeklyPoints = (30 - i) * 10
		profiles = append(profiles, p)
	}

	ths := app.CalculateDynamicThresholds(profiles)
	if len(ths) != len(domain.Tiers)-1 {
		t.Fatalf("expected %d thresholds, got %d", len(domain.Tiers)-1, len(ths))
	}
	if ths[0].Tier != domain.TierTitanium {
		t.Fatalf("first threshold must be the highest tier, got %s", ths[0].Tier)
	}
	for i := 1; i < len(ths); i++ {
		if ths[i].MinPoints > ths[i-1].MinPoints {
			t.Fatalf("thresholds must be non-increasing: %v", ths)
		}
	}
}

func TestWeeklyResetZeroesAndClears(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileStore()
	boards := memory.NewLeaderboardStore()
	settings := memory.NewSettingsStore()
	cache := memory.NewRankCache()
	var mu sync.Mutex

	seeded := seedProfiles(t, profiles, 25)
	for _, p := range seeded {
		err := boards.Upsert(ctx, p.Tier, domain.TierLeaderboardEntry{
			UserID: p.UserID, Points: p.WeeklyPoints, LastUpdated: time.Now(),
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	engine := app.NewRankingEngine(&mu, profiles, boards, settings, cache, nil, app.DefaultWeeklyCycle, logging.Nop{})
	if err := engine.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	all, err := profiles.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	tiers := make(map[domain.Tier]int)
	for _, p := range all {
		if p.WeeklyPoints != 0 {
			t.Fatalf("weekly points not zeroed for %s: %d", p.UserID, p.WeeklyPoints)
		}
		tiers[p.Tier]++
	}
	if tiers[domain.TierWood] == len(all) {
		t.Fatal("reset should have promoted active players out of the lowest tier")
	}

	for _, tier := range domain.Tiers {
		entries, err := boards.Entries(ctx, tier)
		if err != nil {
			t.Fatalf("entries: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("partition %s not cleared: %v", tier, entries)
		}
	}

	if _, ok, err := settings.LastWeeklyReset(ctx); err != nil || !ok {
		t.Fatalf("last reset not stamped: ok=%v err=%v", ok, err)
	}

	// A second reset over the zeroed population is a no-op for points.
	if err := engine.Reset(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	all, _ = profiles.All(ctx)
	for _, p := range all {
		if p.WeeklyPoints != 0 {
			t.Fatalf("idempotency broken for %s", p.UserID)
		}
	}
}

func TestWeeklyResetGrantsRewards(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileStore()
	boards := memory.NewLeaderboardStore()
	settings := memory.NewSettingsStore()
	var mu sync.Mutex

	seedProfiles(t, profiles, 25)

	engine := app.NewRankingEngine(&mu, profiles, boards, settings, nil, nil, app.DefaultWeeklyCycle, logging.Nop{})
	if err := engine.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// The top scorer was promoted out of the starting tier and finished
	// rank 1 in the new tier: promotion bundle plus top-1 bundle.
	top, err := profiles.Get(ctx, "user-00")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	cfg := domain.DefaultPowerupConfig()
	want := domain.StarterPowerupCount*len(domain.Powerups) +
		cfg.Promotion.Total() + cfg.Top[1].Total()
	if top.Powerups.Total() != want {
		t.Fatalf("expected %d powerups for the top scorer, got %d", want, top.Powerups.Total())
	}
}

func TestMaybeResetHonorsCycle(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileStore()
	boards := memory.NewLeaderboardStore()
	settings := memory.NewSettingsStore()
	var mu sync.Mutex

	engine := app.NewRankingEngine(&mu, profiles, boards, settings, nil, nil, app.DefaultWeeklyCycle, logging.Nop{})

	// Fresh deployment: the seed puts the last reset one full cycle back,
	// so the first check resets immediately.
	reset, err := engine.MaybeReset(ctx)
	if err != nil {
		t.Fatalf("maybe reset: %v", err)
	}
	if !reset {
		t.Fatal("first check should reset")
	}

	reset, err = engine.MaybeReset(ctx)
	if err != nil {
		t.Fatalf("maybe reset: %v", err)
	}
	if reset {
		t.Fatal("second check within the cycle must not reset")
	}
}
