package app

import (
	"context"
	"fmt"

	"ultimate-trivia/internal/domain"
)

// Upvote reward sizing: every upvote grants a base bundle of random
// powerups plus a loyalty bonus of one per five lifetime upvotes, capped.
const (
	upvoteBaseReward = 5
	upvoteBonusCap   = 5
)

// UpvoteResult reports what an upvote granted.
type UpvoteResult struct {
	UpvoteCount int              `json:"upvoteCount"`
	Granted     domain.Inventory `json:"granted"`
	Total       int              `json:"total"`
}

// ProcessUpvote records an external upvote and grants random powerups.
// The grant and the counter advance persist together: all mutations are
// applied to a copy and saved in one write, so a failure leaves no
// partial profile state.
func (s *QuizService) ProcessUpvote(ctx context.Context, userID string) (UpvoteResult, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return UpvoteResult{}, err
	}

	updated := profile.Clone()
	now := s.now()
	updated.UpvoteCount++
	updated.LastUpvote = &now

	bonus := updated.UpvoteCount / 5
	if bonus > upvoteBonusCap {
		bonus = upvoteBonusCap
	}
	total := upvoteBaseReward + bonus

	granted := domain.Inventory{}
	for i := 0; i < total; i++ {
		p := domain.Powerups[s.rnd.Intn(len(domain.Powerups))]
		updated.Powerups[p]++
		granted[p]++
	}

	if err := s.profiles.Save(ctx, updated); err != nil {
		return UpvoteResult{}, fmt.Errorf("persist upvote: %w", err)
	}

	s.log.Info(ctx, "upvote processed", "user", userID, "count", updated.UpvoteCount, "powerups", total)
	return UpvoteResult{
		UpvoteCount: updated.UpvoteCount,
		Granted:     granted,
		Total:       total,
	}, nil
}
