package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ultimate-trivia/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileStore keeps user profiles as JSONB documents.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM user_profiles WHERE id=$1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	profile.EnsureInventory()
	return &profile, nil
}

func (s *ProfileStore) Save(ctx context.Context, profile *domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_profiles (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		profile.UserID, raw)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) All(ctx context.Context) ([]*domain.UserProfile, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM user_profiles`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.UserProfile
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		var profile domain.UserProfile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
		profile.EnsureInventory()
		profiles = append(profiles, &profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *ProfileStore) CountTotal(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func (s *ProfileStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_profiles
		WHERE COALESCE((data->>'weekly_points')::int, 0) <> 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active profiles: %w", err)
	}
	return n, nil
}

// ZeroWeeklyPoints rewrites every document in one statement rather than
// round-tripping each profile through the application.
func (s *ProfileStore) ZeroWeeklyPoints(ctx context.Context, at time.Time) error {
	stamp, err := json.Marshal(at.UTC())
	if err != nil {
		return fmt.Errorf("marshal reset stamp: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE user_profiles
		SET data = jsonb_set(jsonb_set(data, '{weekly_points}', '0'), '{last_weekly_reset}', $1::jsonb)`,
		string(stamp))
	if err != nil {
		return fmt.Errorf("zero weekly points: %w", err)
	}
	return nil
}
