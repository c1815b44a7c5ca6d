package app

import (
	"errors"
	"testing"
	"time"

	"ultimate-trivia/internal/domain"
)

func twoQuestions() []domain.Question {
	return []domain.Question{
		{
			Prompt: "First?",
			Options: []domain.Option{
				{Label: "A", Text: "right", Correct: true},
				{Label: "B", Text: "wrong"},
			},
			Difficulty: domain.DifficultyMedium,
		},
		{
			Prompt: "Second?",
			Options: []domain.Option{
				{Label: "A", Text: "wrong"},
				{Label: "B", Text: "right", Correct: true},
			},
			Difficulty: domain.DifficultyMedium,
		},
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSessionSubmitWithoutSelection(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	if _, err := s.Submit(); !errors.Is(err, domain.ErrNoAnswerSelected) {
		t.Fatalf("expected ErrNoAnswerSelected, got %v", err)
	}
	if _, index, ok := s.CurrentQuestion(); !ok || index != 0 {
		t.Fatalf("rejected submit must not advance, index=%d ok=%v", index, ok)
	}
}

func TestSessionSelectUnknownOption(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	if err := s.Select("Z"); !errors.Is(err, domain.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestSessionCorrectAnswerFlow(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	if err := s.Select("A"); err != nil {
		t.Fatalf("select: %v", err)
	}
	outcome, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Correct || outcome.Points <= 0 || outcome.Streak != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.Finished {
		t.Fatal("one answer must not finish a two-question session")
	}

	if err := s.Select("B"); err != nil {
		t.Fatalf("select: %v", err)
	}
	outcome, err = s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Finished || outcome.Streak != 2 {
		t.Fatalf("expected finished with streak 2, got %+v", outcome)
	}
	if !s.Finished() {
		t.Fatal("session should report finished")
	}

	sum := s.summary()
	if sum.Correct != 2 || sum.Incorrect != 0 || sum.Score != outcome.Score {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSessionTimeoutForfeitsQuestion(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	s.Select("A")
	s.expire(0)

	if _, index, ok := s.CurrentQuestion(); !ok || index != 1 {
		t.Fatalf("timeout should advance to question 1, index=%d ok=%v", index, ok)
	}
	sum := s.summary()
	if sum.Incorrect != 1 || sum.Score != 0 {
		t.Fatalf("timeout must count incorrect and score nothing, got %+v", sum)
	}
}

func TestSessionStaleTimerIgnored(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	s.Select("A")
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Fires after the answer already advanced past question 0.
	s.expire(0)
	sum := s.summary()
	if sum.Incorrect != 0 {
		t.Fatalf("stale expiry must be ignored, got %+v", sum)
	}
}

func TestSessionDoubleLifeSecondChance(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	if err := s.UsePowerup(domain.PowerupDoubleLife); err != nil {
		t.Fatalf("use powerup: %v", err)
	}

	s.Select("B")
	outcome, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.SecondChance {
		t.Fatalf("expected second chance, got %+v", outcome)
	}
	if _, index, _ := s.CurrentQuestion(); index != 0 {
		t.Fatalf("second chance must stay on question 0, index=%d", index)
	}

	s.Select("A")
	outcome, err = s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Correct || outcome.SecondChance {
		t.Fatalf("retry should score normally, got %+v", outcome)
	}
	sum := s.summary()
	if sum.Incorrect != 0 {
		t.Fatalf("a saved question is not incorrect, got %+v", sum)
	}
}

func TestSessionFreezeFramePersists(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	s.Select("A")
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.UsePowerup(domain.PowerupFreezeFrame); err != nil {
		t.Fatalf("use powerup: %v", err)
	}

	s.Select("A") // wrong for question 2
	outcome, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Correct {
		t.Fatal("expected wrong answer")
	}
	if outcome.Streak != 1 {
		t.Fatalf("freeze frame must preserve the streak, got %d", outcome.Streak)
	}
}

func TestSessionOnePowerupPerSession(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(time.Now()))
	s.Start()
	defer s.Close()

	if err := s.UsePowerup(domain.PowerupStreakSponsor); err != nil {
		t.Fatalf("use powerup: %v", err)
	}
	if err := s.UsePowerup(domain.PowerupDoublePoints); !errors.Is(err, domain.ErrPowerupActive) {
		t.Fatalf("expected ErrPowerupActive, got %v", err)
	}
}

func TestSessionDoublePointsSingleQuestion(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", SessionStandard, twoQuestions(), DefaultTimeLimit, fixedClock(now))
	s.Start()
	defer s.Close()

	if err := s.UsePowerup(domain.PowerupDoublePoints); err != nil {
		t.Fatalf("use powerup: %v", err)
	}

	s.Select("A")
	first, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	s.Select("B")
	second, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Question 1: doubled base+time bonus. Question 2: plain, plus streak bonus.
	want1 := CalculatePoints(true, domain.DifficultyMedium, 0, DefaultTimeLimit, 0, 2)
	want2 := CalculatePoints(true, domain.DifficultyMedium, 0, DefaultTimeLimit, 1, 1)
	if first.Points != want1 || second.Points != want2 {
		t.Fatalf("expected %d then %d, got %d then %d", want1, want2, first.Points, second.Points)
	}
}

func TestSessionOutOfRangeTimeLimitFallsBack(t *testing.T) {
	s := NewSession("u1", SessionStandard, twoQuestions(), time.Second, fixedClock(time.Now()))
	if s.TimeLimit != DefaultTimeLimit {
		t.Fatalf("expected default limit, got %s", s.TimeLimit)
	}
	s2 := NewSession("u1", SessionStandard, twoQuestions(), 10*time.Minute, fixedClock(time.Now()))
	if s2.TimeLimit != DefaultTimeLimit {
		t.Fatalf("expected default limit, got %s", s2.TimeLimit)
	}
}
