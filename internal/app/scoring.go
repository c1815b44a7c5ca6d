package app

import (
	"time"

	"ultimate-trivia/internal/domain"
)

const (
	minPoints = -50
	maxPoints = 100
)

// CalculatePoints scores a single answered question.
//
// Correct answers earn base + time bonus + streak bonus; incorrect answers
// lose half the base. The result is scaled by the active multiplier and
// clamped to [-50, 100].
func CalculatePoints(correct bool, difficulty domain.Difficulty, elapsed, limit time.Duration, streak, multiplier int) int {
	weight := difficulty.Weight()
	base := 10 * weight

	var points int
	if correct {
		timeFactor := 1 - elapsed.Seconds()/limit.Seconds()
		if timeFactor < 0 {
			timeFactor = 0
		}
		timeBonus := int(5 * timeFactor * float64(weight))

		streakBonus := streak
		if streakBonus > 5 {
			streakBonus = 5
		}
		streakBonus *= 2

		points = base + timeBonus + streakBonus
	} else {
		points = -(base / 2)
	}

	points *= multiplier

	if points < minPoints {
		return minPoints
	}
	if points > maxPoints {
		return maxPoints
	}
	return points
}

// SessionRewardCount returns how many bonus powerups a finished session
// earns from its accuracy and question count.
//
//	questions | >=90% | >=80% | >=70%
//	  >=20    |   3   |   2   |   1
//	  >=10    |   2   |   1   |   0
//	  >=5     |   1   |   0   |   0
func SessionRewardCount(accuracy float64, questions int) int {
	switch {
	case questions >= 20:
		switch {
		case accuracy >= 90:
			return 3
		case accuracy >= 80:
			return 2
		case accuracy >= 70:
			return 1
		}
	case questions >= 10:
		switch {
		case accuracy >= 90:
			return 2
		case accuracy >= 80:
			return 1
		}
	case questions >= 5:
		if accuracy >= 90 {
			return 1
		}
	}
	return 0
}
