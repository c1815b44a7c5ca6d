package app

import (
	"context"
	"time"

	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/trivia"
)

// ProfileStore abstracts the authoritative per-user document store.
type ProfileStore interface {
	// Get returns the stored profile, or domain.ErrProfileNotFound.
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Save(ctx context.Context, profile *domain.UserProfile) error
	All(ctx context.Context) ([]*domain.UserProfile, error)
	CountTotal(ctx context.Context) (int, error)
	// CountActive counts profiles with nonzero weekly points.
	CountActive(ctx context.Context) (int, error)
	// ZeroWeeklyPoints resets every profile's weekly score and stamps the
	// reset time in a single pass.
	ZeroWeeklyPoints(ctx context.Context, at time.Time) error
}

// LeaderboardStore holds the authoritative per-tier weekly score
// partitions.
type LeaderboardStore interface {
	Upsert(ctx context.Context, tier domain.Tier, entry domain.TierLeaderboardEntry) error
	// Entries returns a partition sorted by points descending.
	Entries(ctx context.Context, tier domain.Tier) ([]domain.TierLeaderboardEntry, error)
	Clear(ctx context.Context, tier domain.Tier) error
}

// SettingsStore persists process-wide state that survives restarts.
type SettingsStore interface {
	LastWeeklyReset(ctx context.Context) (time.Time, bool, error)
	SetLastWeeklyReset(ctx context.Context, at time.Time) error
	DailyCategory(ctx context.Context) (name string, day time.Time, ok bool, err error)
	SetDailyCategory(ctx context.Context, name string, day time.Time) error
}

// RankCache is the fast ordered-set projection of the leaderboards.
type RankCache interface {
	StoreTier(ctx context.Context, tier domain.Tier, entries []domain.RankedUser) error
	StoreOverall(ctx context.Context, entries []domain.RankedUser) error
	// TierRank returns a 1-based rank; ok is false when the user is absent.
	TierRank(ctx context.Context, tier domain.Tier, userID string) (rank int, ok bool, err error)
	OverallRank(ctx context.Context, userID string) (rank int, ok bool, err error)
	ClearTier(ctx context.Context, tier domain.Tier) error
}

// QuestionSource fetches and normalizes quiz questions.
type QuestionSource interface {
	Fetch(ctx context.Context, req trivia.Request) ([]domain.Question, error)
}

// Notifier delivers a direct message to a user. Delivery is best-effort;
// callers swallow failures.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// SessionRegistry tracks the active quiz session per user.
type SessionRegistry interface {
	// Put registers a session, or returns domain.ErrSessionActive when the
	// user already has an unfinished one.
	Put(userID string, session *Session) error
	Get(userID string) (*Session, bool)
	Delete(userID string)
}
