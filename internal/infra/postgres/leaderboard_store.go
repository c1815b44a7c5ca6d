package postgres

import (
	"context"
	"fmt"

	"ultimate-trivia/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// LeaderboardStore keeps the authoritative weekly score partitions.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

func (s *LeaderboardStore) Upsert(ctx context.Context, tier domain.Tier, entry domain.TierLeaderboardEntry) error {
	if !tier.Valid() {
		return domain.ErrUnknownTier
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tier_leaderboards (tier, user_id, points, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tier, user_id) DO UPDATE
		SET points = EXCLUDED.points, last_updated = EXCLUDED.last_updated`,
		tier.String(), entry.UserID, entry.Points, entry.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert %s leaderboard entry: %w", tier, err)
	}
	return nil
}

func (s *LeaderboardStore) Entries(ctx context.Context, tier domain.Tier) ([]domain.TierLeaderboardEntry, error) {
	if !tier.Valid() {
		return nil, domain.ErrUnknownTier
	}
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, points, last_updated FROM tier_leaderboards
		WHERE tier = $1
		ORDER BY points DESC, user_id ASC`, tier.String())
	if err != nil {
		return nil, fmt.Errorf("list %s leaderboard: %w", tier, err)
	}
	defer rows.Close()

	var entries []domain.TierLeaderboardEntry
	for rows.Next() {
		var e domain.TierLeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Points, &e.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s leaderboard: %w", tier, err)
	}
	return entries, nil
}

func (s *LeaderboardStore) Clear(ctx context.Context, tier domain.Tier) error {
	if !tier.Valid() {
		return domain.ErrUnknownTier
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM tier_leaderboards WHERE tier = $1`, tier.String()); err != nil {
		return fmt.Errorf("clear %s leaderboard: %w", tier, err)
	}
	return nil
}
