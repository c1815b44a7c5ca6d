package memory

import (
	"context"
	"sync"
	"time"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/domain"

	"golang.org/x/sync/singleflight"
)

// ProfileCache is a read-through process cache in front of the
// authoritative profile store. Concurrent misses for the same user
// collapse into one backing read. Reads may be briefly stale relative to
// a writer on another node; acceptable for a single-process deployment.
type ProfileCache struct {
	inner app.ProfileStore
	sf    singleflight.Group

	mu    sync.RWMutex
	cache map[string]*domain.UserProfile
}

func NewProfileCache(inner app.ProfileStore) *ProfileCache {
	return &ProfileCache{
		inner: inner,
		cache: make(map[string]*domain.UserProfile),
	}
}

func (c *ProfileCache) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	c.mu.RLock()
	if profile, ok := c.cache[userID]; ok {
		c.mu.RUnlock()
		return profile.Clone(), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(userID, func() (interface{}, error) {
		c.mu.RLock()
		if profile, ok := c.cache[userID]; ok {
			c.mu.RUnlock()
			return profile, nil
		}
		c.mu.RUnlock()

		profile, err := c.inner.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[userID] = profile
		c.mu.Unlock()
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.UserProfile).Clone(), nil
}

// Save writes through to the backing store and refreshes the cached copy
// only on success.
func (c *ProfileCache) Save(ctx context.Context, profile *domain.UserProfile) error {
	if err := c.inner.Save(ctx, profile); err != nil {
		return err
	}
	c.mu.Lock()
	c.cache[profile.UserID] = profile.Clone()
	c.mu.Unlock()
	return nil
}

// All bypasses the cache; bulk jobs want the authoritative view.
func (c *ProfileCache) All(ctx context.Context) ([]*domain.UserProfile, error) {
	return c.inner.All(ctx)
}

func (c *ProfileCache) CountTotal(ctx context.Context) (int, error) {
	return c.inner.CountTotal(ctx)
}

func (c *ProfileCache) CountActive(ctx context.Context) (int, error) {
	return c.inner.CountActive(ctx)
}

// ZeroWeeklyPoints invalidates the whole cache: a bulk update touches
// every profile.
func (c *ProfileCache) ZeroWeeklyPoints(ctx context.Context, at time.Time) error {
	if err := c.inner.ZeroWeeklyPoints(ctx, at); err != nil {
		return err
	}
	c.mu.Lock()
	c.cache = make(map[string]*domain.UserProfile)
	c.mu.Unlock()
	return nil
}
