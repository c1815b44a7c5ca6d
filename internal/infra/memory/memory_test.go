package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ultimate-trivia/internal/domain"
)

func TestProfileStoreGetMissing(t *testing.T) {
	store := NewProfileStore()
	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileStoreCloneIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore()
	p := domain.NewUserProfile("u1", time.Now())
	p.TotalPoints = 100
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the original after save must not leak into the store.
	p.TotalPoints = 999
	p.Powerups[domain.PowerupDoubleLife] = 50

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalPoints != 100 || got.Powerups[domain.PowerupDoubleLife] != domain.StarterPowerupCount {
		t.Fatalf("stored profile aliased caller memory: %+v", got)
	}

	// Mutating a read result must not leak back either.
	got.TotalPoints = 7
	again, _ := store.Get(ctx, "u1")
	if again.TotalPoints != 100 {
		t.Fatalf("read result aliased store memory: %+v", again)
	}
}

func TestProfileStoreCountsAndZero(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore()

	active := domain.NewUserProfile("active", time.Now())
	active.WeeklyPoints = 40
	idle := domain.NewUserProfile("idle", time.Now())
	for _, p := range []*domain.UserProfile{active, idle} {
		if err := store.Save(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	if n, _ := store.CountTotal(ctx); n != 2 {
		t.Fatalf("expected 2 total, got %d", n)
	}
	if n, _ := store.CountActive(ctx); n != 1 {
		t.Fatalf("expected 1 active, got %d", n)
	}

	at := time.Now()
	if err := store.ZeroWeeklyPoints(ctx, at); err != nil {
		t.Fatalf("zero: %v", err)
	}
	if n, _ := store.CountActive(ctx); n != 0 {
		t.Fatalf("expected 0 active after zero, got %d", n)
	}
	got, _ := store.Get(ctx, "active")
	if got.WeeklyPoints != 0 {
		t.Fatalf("weekly points survived zeroing: %+v", got)
	}
}

func TestProfileCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := NewProfileStore()
	cache := NewProfileCache(inner)

	p := domain.NewUserProfile("u1", time.Now())
	p.TotalPoints = 10
	if err := cache.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := cache.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalPoints != 10 {
		t.Fatalf("unexpected profile %+v", got)
	}

	// Returned copies are isolated from the cached one.
	got.TotalPoints = 999
	again, _ := cache.Get(ctx, "u1")
	if again.TotalPoints != 10 {
		t.Fatalf("cache handed out shared memory: %+v", again)
	}
}

func TestLeaderboardStoreOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()

	entries := []domain.TierLeaderboardEntry{
		{UserID: "carol", Points: 100, LastUpdated: time.Now()},
		{UserID: "alice", Points: 300, LastUpdated: time.Now()},
		{UserID: "bob", Points: 300, LastUpdated: time.Now()},
	}
	for _, e := range entries {
		if err := store.Upsert(ctx, domain.TierGold, e); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := store.Entries(ctx, domain.TierGold)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// Points descending, user id ascending for ties.
	if got[0].UserID != "alice" || got[1].UserID != "bob" || got[2].UserID != "carol" {
		t.Fatalf("bad ordering: %+v", got)
	}

	// Upsert replaces rather than duplicates.
	if err := store.Upsert(ctx, domain.TierGold, domain.TierLeaderboardEntry{UserID: "carol", Points: 400, LastUpdated: time.Now()}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = store.Entries(ctx, domain.TierGold)
	if len(got) != 3 || got[0].UserID != "carol" {
		t.Fatalf("upsert did not replace: %+v", got)
	}

	if err := store.Clear(ctx, domain.TierGold); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = store.Entries(ctx, domain.TierGold)
	if len(got) != 0 {
		t.Fatalf("clear left entries: %+v", got)
	}
}

func TestLeaderboardStoreUnknownTier(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()
	err := store.Upsert(ctx, domain.Tier("Obsidian"), domain.TierLeaderboardEntry{UserID: "x"})
	if !errors.Is(err, domain.ErrUnknownTier) {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore()

	if _, ok, err := store.LastWeeklyReset(ctx); err != nil || ok {
		t.Fatalf("expected unset, got ok=%v err=%v", ok, err)
	}
	at := time.Now().Truncate(time.Second)
	if err := store.SetLastWeeklyReset(ctx, at); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := store.LastWeeklyReset(ctx)
	if err != nil || !ok || !got.Equal(at) {
		t.Fatalf("round trip failed: got=%v ok=%v err=%v", got, ok, err)
	}

	day := domain.UTCDay(time.Now())
	if err := store.SetDailyCategory(ctx, "science", day); err != nil {
		t.Fatalf("set category: %v", err)
	}
	name, gotDay, ok, err := store.DailyCategory(ctx)
	if err != nil || !ok || name != "science" || !gotDay.Equal(day) {
		t.Fatalf("category round trip failed: %q %v ok=%v err=%v", name, gotDay, ok, err)
	}
}
