package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/logging"
	"ultimate-trivia/internal/trivia"
)

// Question count bounds for a quiz.
const (
	MinQuestions     = 1
	MaxQuestions     = 50
	DefaultQuestions = 5
)

// QuizOptions tune a standard quiz run.
type QuizOptions struct {
	Category   string
	Difficulty string
	Amount     int
	TimeLimit  time.Duration
}

// Deps wires the service's collaborators. Every backend is injected; the
// service holds no globals.
type Deps struct {
	Profiles     ProfileStore
	Boards       LeaderboardStore
	Settings     SettingsStore
	Leaderboards *LeaderboardService
	Questions    QuestionSource
	Sessions     SessionRegistry
	Notifier     Notifier
	Log          logging.Logger
}

// QuizService holds the quiz use cases: starting sessions, scoring
// answers, powerup activation, upvote processing, and profile views.
type QuizService struct {
	profiles     ProfileStore
	boards       LeaderboardStore
	settings     SettingsStore
	leaderboards *LeaderboardService
	questions    QuestionSource
	sessions     SessionRegistry
	notifier     Notifier
	log          logging.Logger
	now          func() time.Time
	rnd          *rand.Rand
}

func NewQuizService(deps Deps) *QuizService {
	return &QuizService{
		profiles:     deps.Profiles,
		boards:       deps.Boards,
		settings:     deps.Settings,
		leaderboards: deps.Leaderboards,
		questions:    deps.Questions,
		sessions:     deps.Sessions,
		notifier:     deps.Notifier,
		log:          deps.Log,
		now:          time.Now,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Profile returns the user's profile, creating a zeroed one on first
// interaction.
func (s *QuizService) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = domain.NewUserProfile(userID, s.now())
		if err := s.profiles.Save(ctx, profile); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return profile, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ToggleNotifications flips the daily-reminder flag and returns the new
// state.
func (s *QuizService) ToggleNotifications(ctx context.Context, userID string) (bool, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return false, err
	}
	profile.NotificationsEnabled = !profile.NotificationsEnabled
	if err := s.profiles.Save(ctx, profile); err != nil {
		return false, err
	}
	return profile.NotificationsEnabled, nil
}

// StartQuiz prepares a standard session. The caller starts it once its
// event stream is attached.
func (s *QuizService) StartQuiz(ctx context.Context, userID string, opts QuizOptions) (*Session, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}

	amount := opts.Amount
	if amount < MinQuestions || amount > MaxQuestions {
		amount = DefaultQuestions
	}

	questions, err := s.questions.Fetch(ctx, trivia.Request{
		Category:   opts.Category,
		Difficulty: opts.Difficulty,
		Amount:     amount,
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuestionsUnavailable
	}

	session := NewSession(userID, SessionStandard, questions, opts.TimeLimit, s.now)
	if err := s.sessions.Put(userID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// StartDailyQuiz prepares the once-per-day challenge in the rotating
// category. A repeat attempt on the same UTC day is rejected with the
// time remaining until midnight.
func (s *QuizService) StartDailyQuiz(ctx context.Context, userID string) (*Session, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := domain.UTCDay(now)
	if profile.LastDailyQuiz != nil && !domain.UTCDay(*profile.LastDailyQuiz).Before(today) {
		return nil, &domain.DailyTakenError{Remaining: today.Add(24 * time.Hour).Sub(now)}
	}

	category, err := s.DailyCategory(ctx)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.Fetch(ctx, trivia.Request{
		Category:   category,
		Difficulty: string(domain.DifficultyEasy),
		Amount:     DefaultQuestions,
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuestionsUnavailable
	}

	session := NewSession(userID, SessionDaily, questions, DefaultTimeLimit, s.now)
	if err := s.sessions.Put(userID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Abandon discards an unfinished session so the user can start another.
// Nothing is recorded.
func (s *QuizService) Abandon(session *Session) {
	session.Close()
	s.sessions.Delete(session.UserID)
}

// ActiveSession returns the user's running session, if any.
func (s *QuizService) ActiveSession(userID string) (*Session, bool) {
	return s.sessions.Get(userID)
}

// Submit scores the session's selected answer. When the submission
// resolves the last question, the session is flushed and its summary
// returned alongside the outcome.
func (s *QuizService) Submit(ctx context.Context, session *Session) (AnswerOutcome, *Summary, error) {
	outcome, err := session.Submit()
	if err != nil {
		return AnswerOutcome{}, nil, err
	}
	if !outcome.Finished {
		return outcome, nil, nil
	}
	summary, err := s.Complete(ctx, session)
	if err != nil {
		return outcome, nil, err
	}
	return outcome, &summary, nil
}

// UsePowerup activates one of the user's powerups for this session,
// spending one charge. Activation with zero owned, or with one already
// active, is rejected without changing any state.
func (s *QuizService) UsePowerup(ctx context.Context, session *Session, p domain.Powerup) (remaining int, err error) {
	profile, err := s.Profile(ctx, session.UserID)
	if err != nil {
		return 0, err
	}
	if profile.Powerups[p] <= 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrPowerupUnavailable, p)
	}
	if err := session.UsePowerup(p); err != nil {
		return 0, err
	}
	profile.Powerups[p]--
	if err := s.profiles.Save(ctx, profile); err != nil {
		return 0, fmt.Errorf("spend powerup: %w", err)
	}
	return profile.Powerups[p], nil
}

// Complete flushes a finished session into the profile and the weekly
// tier leaderboard, computes the rank delta against the pre-flush
// position, and awards accuracy-based bonus powerups. Safe to call more
// than once; only the first call flushes.
func (s *QuizService) Complete(ctx context.Context, session *Session) (Summary, error) {
	summary := session.summary()

	session.mu.Lock()
	if session.flushed {
		session.mu.Unlock()
		return summary, nil
	}
	session.flushed = true
	session.mu.Unlock()
	defer s.sessions.Delete(session.UserID)

	profile, err := s.Profile(ctx, session.UserID)
	if err != nil {
		return summary, err
	}

	now := s.now()
	if session.Type == SessionDaily {
		profile.UpdateDailyStreak(now)
	}
	profile.QuizzesCompleted++
	profile.TotalPoints += summary.Score
	profile.WeeklyPoints += summary.Score
	profile.QuestionsAnswered += summary.Questions
	profile.CorrectAnswers += summary.Correct

	initialRank := s.tierRankOf(ctx, profile.Tier, profile.UserID)
	entry := domain.TierLeaderboardEntry{
		UserID:      profile.UserID,
		Points:      profile.WeeklyPoints,
		LastUpdated: now,
	}
	if err := s.boards.Upsert(ctx, profile.Tier, entry); err != nil {
		return summary, fmt.Errorf("update weekly leaderboard: %w", err)
	}
	newRank := s.tierRankOf(ctx, profile.Tier, profile.UserID)

	summary.NewRank = newRank
	if initialRank > 0 && newRank > 0 {
		summary.RankChange = initialRank - newRank
	}

	earned := SessionRewardCount(summary.Accuracy, summary.Questions)
	if session.Type == SessionDaily && profile.CurrentStreak > 0 && profile.CurrentStreak%7 == 0 {
		earned++
	}
	for i := 0; i < earned; i++ {
		profile.Powerups[domain.Powerups[i%len(domain.Powerups)]]++
	}
	summary.PowerupsEarned = earned
	summary.Tier = string(profile.Tier)
	summary.CurrentStreak = profile.CurrentStreak
	summary.LongestStreak = profile.LongestStreak

	if err := s.profiles.Save(ctx, profile); err != nil {
		return summary, fmt.Errorf("flush session: %w", err)
	}
	return summary, nil
}

// tierRankOf reads the 1-based rank from the authoritative partition, 0
// when absent. Cache staleness would skew the before/after delta shown at
// session end, so this read bypasses the cache.
func (s *QuizService) tierRankOf(ctx context.Context, tier domain.Tier, userID string) int {
	entries, err := s.boards.Entries(ctx, tier)
	if err != nil {
		s.log.Warn(ctx, "rank lookup failed", "tier", tier, "error", err)
		return 0
	}
	for i, e := range entries {
		if e.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// DailyCategory returns the featured category for the current UTC day,
// rotating to a fresh random one when the stored choice is stale.
func (s *QuizService) DailyCategory(ctx context.Context) (string, error) {
	today := domain.UTCDay(s.now())
	name, day, ok, err := s.settings.DailyCategory(ctx)
	if err != nil {
		return "", fmt.Errorf("read daily category: %w", err)
	}
	if ok && domain.UTCDay(day).Equal(today) {
		return name, nil
	}
	name = trivia.RandomCategory(s.rnd)
	if err := s.settings.SetDailyCategory(ctx, name, today); err != nil {
		return "", fmt.Errorf("rotate daily category: %w", err)
	}
	return name, nil
}
