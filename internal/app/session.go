package app

import (
	"sync"
	"time"

	"ultimate-trivia/internal/domain"

	"github.com/google/uuid"
)

// SessionType distinguishes ordinary quizzes from the once-per-day
// challenge that feeds the daily streak.
type SessionType string

const (
	SessionStandard SessionType = "standard"
	SessionDaily    SessionType = "daily"
)

// Time limit bounds for a single question.
const (
	MinTimeLimit     = 10 * time.Second
	MaxTimeLimit     = 120 * time.Second
	DefaultTimeLimit = 30 * time.Second
)

// SessionEventType enumerates what a session pushes to its transport.
type SessionEventType string

const (
	EventQuestion     SessionEventType = "question"
	EventAnswered     SessionEventType = "answered"
	EventSecondChance SessionEventType = "secondChance"
	EventTimeout      SessionEventType = "timeout"
	EventCompleted    SessionEventType = "completed"
)

// SessionEvent is pushed on the session's event stream.
type SessionEvent struct {
	Type          SessionEventType
	QuestionIndex int
	Question      *domain.Question
	Outcome       *AnswerOutcome
}

// AnswerOutcome summarizes one scored submission.
type AnswerOutcome struct {
	Correct      bool   `json:"correct"`
	Points       int    `json:"points"`
	Score        int    `json:"score"`
	Streak       int    `json:"streak"`
	CorrectLabel string `json:"correctLabel"`
	SecondChance bool   `json:"secondChance"`
	Finished     bool   `json:"finished"`
}

// Session is one run through a fixed ordered batch of questions for one
// user. It owns the per-question countdown; state is guarded by a mutex
// because the timer goroutine and the transport both touch it.
type Session struct {
	ID        string
	UserID    string
	Type      SessionType
	TimeLimit time.Duration

	questions []domain.Question
	now       func() time.Time

	mu            sync.Mutex
	current       int
	selected      string
	score         int
	lives         int
	streak        int
	streakFrozen  bool
	multiplier    int
	usedPowerup   bool
	activePowerup domain.Powerup
	questionStart time.Time
	totalElapsed  time.Duration
	correct       int
	incorrect     int
	finished      bool
	flushed       bool
	timer         *time.Timer
	events        chan SessionEvent
}

func NewSession(userID string, typ SessionType, questions []domain.Question, timeLimit time.Duration, now func() time.Time) *Session {
	if timeLimit < MinTimeLimit || timeLimit > MaxTimeLimit {
		timeLimit = DefaultTimeLimit
	}
	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       typ,
		TimeLimit:  timeLimit,
		questions:  questions,
		now:        now,
		lives:      1,
		multiplier: 1,
		events:     make(chan SessionEvent, 4*len(questions)+4),
	}
}

// Events returns the stream the transport listens on. Completed is always
// the final event.
func (s *Session) Events() <-chan SessionEvent {
	return s.events
}

// Start presents the first question and arms its countdown.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginQuestionLocked()
}

// Select records the user's chosen option for the current question.
func (s *Session) Select(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return domain.ErrSessionFinished
	}
	q := s.questions[s.current]
	for _, opt := range q.Options {
		if opt.Label == label {
			s.selected = label
			return nil
		}
	}
	return domain.ErrUnknownOption
}

// Submit scores the selected option against the current question.
// Submitting without a selection is rejected and leaves the countdown and
// session state untouched.
func (s *Session) Submit() (AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return AnswerOutcome{}, domain.ErrSessionFinished
	}
	if s.selected == "" {
		return AnswerOutcome{}, domain.ErrNoAnswerSelected
	}

	s.stopTimerLocked()

	elapsed := s.now().Sub(s.questionStart)
	s.totalElapsed += elapsed

	q := s.questions[s.current]
	correct := s.selected == q.CorrectLabel()
	points := CalculatePoints(correct, q.Difficulty, elapsed, s.TimeLimit, s.streak, s.multiplier)
	s.score += points

	outcome := AnswerOutcome{
		Correct:      correct,
		Points:       points,
		CorrectLabel: q.CorrectLabel(),
	}

	if correct {
		s.correct++
		s.streak++
	} else {
		s.lives--
		if s.lives > 0 {
			// Extra chance on this question from double life. No countdown
			// while re-answering, matching the evaluation pause.
			s.selected = ""
			outcome.SecondChance = true
			outcome.Score = s.score
			outcome.Streak = s.streak
			s.emitLocked(SessionEvent{Type: EventSecondChance, QuestionIndex: s.current, Outcome: &outcome})
			return outcome, nil
		}
		s.incorrect++
		if !s.streakFrozen {
			s.streak = 0
		}
	}

	outcome.Score = s.score
	outcome.Streak = s.streak
	s.emitLocked(SessionEvent{Type: EventAnswered, QuestionIndex: s.current, Outcome: &outcome})

	s.advanceLocked()
	outcome.Finished = s.finished
	return outcome, nil
}

// UsePowerup applies one of the four effects. At most one powerup may be
// activated per session; inventory checks belong to the caller.
func (s *Session) UsePowerup(p domain.Powerup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return domain.ErrSessionFinished
	}
	if s.usedPowerup {
		return domain.ErrPowerupActive
	}

	switch p {
	case domain.PowerupStreakSponsor:
		s.streak++
	case domain.PowerupDoubleLife:
		s.lives = 2
	case domain.PowerupFreezeFrame:
		s.streakFrozen = true
	case domain.PowerupDoublePoints:
		s.multiplier = 2
	default:
		return domain.ErrUnknownPowerup
	}

	s.usedPowerup = true
	s.activePowerup = p
	return nil
}

// beginQuestionLocked presents the current question and arms its timer.
func (s *Session) beginQuestionLocked() {
	s.selected = ""
	s.questionStart = s.now()
	q := s.questions[s.current]
	s.emitLocked(SessionEvent{Type: EventQuestion, QuestionIndex: s.current, Question: &q})
	s.armTimerLocked()
}

func (s *Session) armTimerLocked() {
	index := s.current
	s.timer = time.AfterFunc(s.TimeLimit, func() {
		s.expire(index)
	})
}

// expire forces the move to the next question when the countdown runs out.
// A timeout is an immediate forfeiture: it counts as incorrect, spends no
// lives, and deducts no points.
func (s *Session) expire(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The question was superseded by an answer; this timer is stale.
	if s.finished || index != s.current {
		return
	}

	s.totalElapsed += s.TimeLimit
	s.incorrect++
	if !s.streakFrozen {
		s.streak = 0
	}
	s.emitLocked(SessionEvent{Type: EventTimeout, QuestionIndex: s.current})
	s.advanceLocked()
}

func (s *Session) advanceLocked() {
	// Per-question effects expire here; freeze frame lasts the session.
	s.lives = 1
	s.multiplier = 1

	s.current++
	if s.current >= len(s.questions) {
		s.finished = true
		s.stopTimerLocked()
		s.emitLocked(SessionEvent{Type: EventCompleted})
		return
	}
	s.beginQuestionLocked()
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// emitLocked never blocks: if the buffer is full the oldest event is
// dropped so a slow consumer cannot stall the timer goroutine.
func (s *Session) emitLocked(ev SessionEvent) {
	select {
	case s.events <- ev:
	default:
		select {
		case <-s.events:
		default:
		}
		s.events <- ev
	}
}

// Close finishes the session immediately without scoring the remaining
// questions. Used when the transport goes away mid-quiz.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	s.stopTimerLocked()
}

// Finished reports whether the last question has been resolved.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (domain.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return domain.Question{}, 0, false
	}
	return s.questions[s.current], s.current, true
}

// ActivePowerup returns the powerup activated this session, if any.
func (s *Session) ActivePowerup() (domain.Powerup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePowerup, s.usedPowerup
}

// Summary is the end-of-session accounting flushed into the profile and
// weekly leaderboard.
type Summary struct {
	Score          int     `json:"score"`
	Questions      int     `json:"questions"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Accuracy       float64 `json:"accuracy"`
	AvgSeconds     float64 `json:"avgSeconds"`
	PowerupsEarned int     `json:"powerupsEarned"`
	Tier           string  `json:"tier"`
	RankChange     int     `json:"rankChange"`
	NewRank        int     `json:"newRank"`
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
}

func (s *Session) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.questions)
	accuracy := 0.0
	avg := 0.0
	if total > 0 {
		accuracy = float64(s.correct) / float64(total) * 100
		avg = s.totalElapsed.Seconds() / float64(total)
	}
	return Summary{
		Score:      s.score,
		Questions:  total,
		Correct:    s.correct,
		Incorrect:  s.incorrect,
		Accuracy:   accuracy,
		AvgSeconds: avg,
	}
}
