package memory

import (
	"context"
	"sync"
	"time"

	"ultimate-trivia/internal/domain"
)

// ProfileStore is an in-memory implementation of app.ProfileStore, used in
// tests and when no database is configured.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.UserProfile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]*domain.UserProfile)}
}

func (s *ProfileStore) Get(_ context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

func (s *ProfileStore) Save(_ context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile.Clone()
	return nil
}

func (s *ProfileStore) All(_ context.Context) ([]*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*domain.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		all = append(all, p.Clone())
	}
	return all, nil
}

func (s *ProfileStore) CountTotal(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}

func (s *ProfileStore) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := 0
	for _, p := range s.profiles {
		if p.WeeklyPoints > 0 {
			active++
		}
	}
	return active, nil
}

func (s *ProfileStore) ZeroWeeklyPoints(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		p.ResetWeekly(at)
	}
	return nil
}
