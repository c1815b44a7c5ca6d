package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProfileNotFound is returned when a user has no stored profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSessionNotFound is returned when a user has no active quiz session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionActive is returned when starting a quiz while one is running.
	ErrSessionActive = errors.New("a quiz session is already active")
	// ErrSessionFinished is returned for actions on a completed session.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrNoAnswerSelected is returned when submitting without a selection.
	ErrNoAnswerSelected = errors.New("no answer selected")
	// ErrUnknownOption indicates a selected option label is not on the question.
	ErrUnknownOption = errors.New("unknown answer option")
	// ErrPowerupUnavailable is returned when activating a powerup the user
	// has zero of.
	ErrPowerupUnavailable = errors.New("powerup not available")
	// ErrPowerupActive is returned when a powerup was already activated
	// this session.
	ErrPowerupActive = errors.New("a powerup is already active")
	// ErrUnknownPowerup indicates an unrecognized powerup name.
	ErrUnknownPowerup = errors.New("unknown powerup")
	// ErrUnknownTier indicates a tier name outside the fixed enumeration.
	ErrUnknownTier = errors.New("unknown tier")
	// ErrQuestionsUnavailable means the question source returned nothing
	// usable; callers must treat this as "try again later", not as an
	// intentionally empty quiz.
	ErrQuestionsUnavailable = errors.New("questions unavailable")
)

// DailyTakenError rejects a second daily quiz on the same UTC day and
// carries the time remaining until the next one unlocks.
type DailyTakenError struct {
	Remaining time.Duration
}

func (e *DailyTakenError) Error() string {
	h := int(e.Remaining.Hours())
	m := int(e.Remaining.Minutes()) % 60
	return fmt.Sprintf("daily quiz already taken, next one in %dh %dm", h, m)
}
