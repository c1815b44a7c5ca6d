package domain

import "time"

// StarterPowerupCount is the inventory every new profile begins with.
const StarterPowerupCount = 2

// UserProfile is the per-user document persisted in the authoritative
// store. Created on first interaction, mutated after every answered
// question and at every weekly reset, never deleted.
type UserProfile struct {
	UserID               string     `json:"user_id"`
	TotalPoints          int        `json:"total_points"`
	QuestionsAnswered    int        `json:"questions_answered"`
	CorrectAnswers       int        `json:"correct_answers"`
	CurrentStreak        int        `json:"current_streak"`
	LongestStreak        int        `json:"longest_streak"`
	LastDailyQuiz        *time.Time `json:"last_daily_quiz,omitempty"`
	Tier                 Tier       `json:"tier"`
	WeeklyPoints         int        `json:"weekly_points"`
	LastWeeklyReset      time.Time  `json:"last_weekly_reset"`
	Powerups             Inventory  `json:"powerups"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	UpvoteCount          int        `json:"upvote_count"`
	LastUpvote           *time.Time `json:"last_upvote,omitempty"`
	QuizzesCompleted     int        `json:"quizzes_completed"`
}

// NewUserProfile returns a zeroed profile in the lowest tier with the
// starter powerup inventory.
func NewUserProfile(userID string, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:          userID,
		Tier:            TierWood,
		LastWeeklyReset: now,
		Powerups:        NewInventory(StarterPowerupCount),
	}
}

// EnsureInventory initializes a missing powerup map. Documents written
// before inventories existed unmarshal with a nil map.
func (p *UserProfile) EnsureInventory() {
	if p.Powerups == nil {
		p.Powerups = make(Inventory, len(Powerups))
	}
}

// Accuracy returns the lifetime correct-answer percentage, 0 when no
// question was ever answered.
func (p *UserProfile) Accuracy() float64 {
	if p.QuestionsAnswered == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.QuestionsAnswered) * 100
}

// Clone returns a deep copy, so callers can mutate and persist without
// dirtying a shared cached profile on failure.
func (p *UserProfile) Clone() *UserProfile {
	c := *p
	c.Powerups = make(Inventory, len(p.Powerups))
	for k, v := range p.Powerups {
		c.Powerups[k] = v
	}
	if p.LastDailyQuiz != nil {
		t := *p.LastDailyQuiz
		c.LastDailyQuiz = &t
	}
	if p.LastUpvote != nil {
		t := *p.LastUpvote
		c.LastUpvote = &t
	}
	return &c
}

// UpdateDailyStreak advances the daily-quiz streak for a completion on the
// given UTC day: consecutive days extend the streak, a gap restarts it.
func (p *UserProfile) UpdateDailyStreak(today time.Time) {
	today = UTCDay(today)
	if p.LastDailyQuiz == nil {
		p.CurrentStreak = 1
	} else {
		switch days := int(today.Sub(UTCDay(*p.LastDailyQuiz)).Hours() / 24); {
		case days == 1:
			p.CurrentStreak++
		case days > 1:
			p.CurrentStreak = 1
		}
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastDailyQuiz = &today
}

// ResetWeekly zeroes the weekly score and stamps the reset time.
func (p *UserProfile) ResetWeekly(at time.Time) {
	p.WeeklyPoints = 0
	p.LastWeeklyReset = at
}

// UTCDay truncates t to its UTC calendar day boundary.
func UTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Difficulty of a quiz question as reported by the question API.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Weight returns the scoring weight, defaulting to medium for unknown
// difficulty names.
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// Option is one of the four possible answers for a question.
type Option struct {
	Label   string `json:"label"` // "A".."D"
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question is a normalized multiple-choice question: one correct option
// plus three incorrect ones, shuffled.
type Question struct {
	Prompt     string     `json:"prompt"`
	Options    []Option   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
}

// CorrectLabel returns the label of the correct option.
func (q Question) CorrectLabel() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.Label
		}
	}
	return ""
}

// TierLeaderboardEntry is the authoritative weekly score snapshot for one
// user within one tier partition.
type TierLeaderboardEntry struct {
	UserID      string    `json:"user_id"`
	Points      int       `json:"points"`
	LastUpdated time.Time `json:"last_updated"`
}

// RankedUser is a 1-based ranked view of a leaderboard row.
type RankedUser struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}
