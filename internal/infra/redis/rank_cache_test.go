package redis

import (
	"context"
	"testing"

	"ultimate-trivia/internal/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func TestRankCacheTierRank(t *testing.T) {
	cache := NewRankCache(newTestClient(t))
	ctx := context.Background()

	entries := []domain.RankedUser{
		{UserID: "alice", Points: 300, Rank: 1},
		{UserID: "bob", Points: 200, Rank: 2},
		{UserID: "carol", Points: 100, Rank: 3},
	}
	require.NoError(t, cache.StoreTier(ctx, domain.TierGold, entries))

	rank, ok, err := cache.TierRank(ctx, domain.TierGold, "bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, rank)

	_, ok, err = cache.TierRank(ctx, domain.TierGold, "mallory")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRankCacheStoreTierReplaces(t *testing.T) {
	cache := NewRankCache(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, cache.StoreTier(ctx, domain.TierSilver, []domain.RankedUser{
		{UserID: "old", Points: 50, Rank: 1},
	}))
	require.NoError(t, cache.StoreTier(ctx, domain.TierSilver, []domain.RankedUser{
		{UserID: "new", Points: 80, Rank: 1},
	}))

	_, ok, err := cache.TierRank(ctx, domain.TierSilver, "old")
	require.NoError(t, err)
	require.False(t, ok)

	rank, ok, err := cache.TierRank(ctx, domain.TierSilver, "new")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, rank)
}

func TestRankCacheOverall(t *testing.T) {
	cache := NewRankCache(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, cache.StoreOverall(ctx, []domain.RankedUser{
		{UserID: "alice", Points: 5000, Rank: 1},
		{UserID: "bob", Points: 4000, Rank: 2},
	}))

	rank, ok, err := cache.OverallRank(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, rank)
}

func TestRankCacheClearTier(t *testing.T) {
	cache := NewRankCache(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, cache.StoreTier(ctx, domain.TierBronze, []domain.RankedUser{
		{UserID: "alice", Points: 10, Rank: 1},
	}))
	require.NoError(t, cache.ClearTier(ctx, domain.TierBronze))

	_, ok, err := cache.TierRank(ctx, domain.TierBronze, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}
