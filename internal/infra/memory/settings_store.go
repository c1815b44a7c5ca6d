package memory

import (
	"context"
	"sync"
	"time"
)

// SettingsStore holds process settings in memory.
type SettingsStore struct {
	mu            sync.RWMutex
	lastReset     time.Time
	lastResetSet  bool
	dailyCategory string
	dailyDay      time.Time
	dailySet      bool
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

func (s *SettingsStore) LastWeeklyReset(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReset, s.lastResetSet, nil
}

func (s *SettingsStore) SetLastWeeklyReset(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReset = at
	s.lastResetSet = true
	return nil
}

func (s *SettingsStore) DailyCategory(_ context.Context) (string, time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyCategory, s.dailyDay, s.dailySet, nil
}

func (s *SettingsStore) SetDailyCategory(_ context.Context, name string, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyCategory = name
	s.dailyDay = day
	s.dailySet = true
	return nil
}
