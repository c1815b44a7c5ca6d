// Package scheduler runs the bot's recurring jobs: the weekly tier reset
// check, the leaderboard cache refresh, and the daily challenge rotation
// with its reminder fan-out.
package scheduler

import (
	"context"
	"time"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/logging"
)

// Default job intervals. The reset check runs far more often than the
// cycle itself so a restart never delays a due reset by more than one
// check interval.
const (
	DefaultResetCheckInterval = 10 * time.Hour
	DefaultDailyCheckInterval = time.Hour
)

// Config tunes the job intervals; zero values fall back to defaults.
type Config struct {
	ResetCheckInterval   time.Duration
	CacheRefreshInterval time.Duration
	DailyCheckInterval   time.Duration
}

// Scheduler owns the background goroutines. Run blocks until the context
// is canceled; every job logs failures and keeps ticking.
type Scheduler struct {
	ranking      *app.RankingEngine
	leaderboards *app.LeaderboardService
	quizzes      *app.QuizService
	profiles     app.ProfileStore
	notifier     app.Notifier
	cfg          Config
	log          logging.Logger

	lastReminded time.Time
}

func New(
	ranking *app.RankingEngine,
	leaderboards *app.LeaderboardService,
	quizzes *app.QuizService,
	profiles app.ProfileStore,
	notifier app.Notifier,
	cfg Config,
	log logging.Logger,
) *Scheduler {
	if cfg.ResetCheckInterval <= 0 {
		cfg.ResetCheckInterval = DefaultResetCheckInterval
	}
	if cfg.CacheRefreshInterval <= 0 {
		cfg.CacheRefreshInterval = app.DefaultRefreshInterval
	}
	if cfg.DailyCheckInterval <= 0 {
		cfg.DailyCheckInterval = DefaultDailyCheckInterval
	}
	return &Scheduler{
		ranking:      ranking,
		leaderboards: leaderboards,
		quizzes:      quizzes,
		profiles:     profiles,
		notifier:     notifier,
		cfg:          cfg,
		log:          log,
	}
}

// Run starts all job loops and blocks until ctx is canceled. Each job
// fires once at startup so a fresh process converges immediately.
func (s *Scheduler) Run(ctx context.Context) {
	go s.loop(ctx, s.cfg.ResetCheckInterval, s.checkWeeklyReset)
	go s.loop(ctx, s.cfg.CacheRefreshInterval, s.refreshLeaderboards)
	go s.loop(ctx, s.cfg.DailyCheckInterval, s.rotateDailyCategory)
	<-ctx.Done()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, job func(context.Context)) {
	job(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *Scheduler) checkWeeklyReset(ctx context.Context) {
	reset, err := s.ranking.MaybeReset(ctx)
	if err != nil {
		s.log.Error(ctx, "weekly reset failed", "error", err)
		return
	}
	if reset {
		s.log.Info(ctx, "weekly reset completed")
		s.refreshLeaderboards(ctx)
	}
}

func (s *Scheduler) refreshLeaderboards(ctx context.Context) {
	if err := s.leaderboards.Refresh(ctx); err != nil {
		s.log.Error(ctx, "leaderboard refresh failed", "error", err)
	}
}

// rotateDailyCategory advances the featured category on UTC day change
// and reminds opted-in users who have not played today's challenge.
func (s *Scheduler) rotateDailyCategory(ctx context.Context) {
	category, err := s.quizzes.DailyCategory(ctx)
	if err != nil {
		s.log.Error(ctx, "daily category rotation failed", "error", err)
		return
	}
	if s.notifier == nil {
		return
	}
	// One reminder sweep per UTC day, no matter how often the job ticks.
	today := domain.UTCDay(time.Now())
	if s.lastReminded.Equal(today) {
		return
	}
	s.lastReminded = today

	profiles, err := s.profiles.All(ctx)
	if err != nil {
		s.log.Error(ctx, "load profiles for reminders failed", "error", err)
		return
	}
	for _, p := range profiles {
		if !p.NotificationsEnabled {
			continue
		}
		if p.LastDailyQuiz != nil && domain.UTCDay(*p.LastDailyQuiz).Equal(today) {
			continue
		}
		msg := "Today's daily challenge category is " + category + ". Keep your streak going!"
		if err := s.notifier.Notify(ctx, p.UserID, msg); err != nil {
			s.log.Warn(ctx, "daily reminder failed", "user", p.UserID, "error", err)
		}
	}
}
