package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	settingLastWeeklyReset = "last_weekly_reset"
	settingDailyCategory   = "daily_category"
)

// SettingsStore persists process-wide state as JSONB documents keyed by
// setting name.
type SettingsStore struct {
	pool *pgxpool.Pool
}

func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

type resetSetting struct {
	At time.Time `json:"at"`
}

type dailyCategorySetting struct {
	Name string    `json:"name"`
	Day  time.Time `json:"day"`
}

func (s *SettingsStore) LastWeeklyReset(ctx context.Context) (time.Time, bool, error) {
	var setting resetSetting
	ok, err := s.load(ctx, settingLastWeeklyReset, &setting)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return setting.At, true, nil
}

func (s *SettingsStore) SetLastWeeklyReset(ctx context.Context, at time.Time) error {
	return s.save(ctx, settingLastWeeklyReset, resetSetting{At: at.UTC()})
}

func (s *SettingsStore) DailyCategory(ctx context.Context) (string, time.Time, bool, error) {
	var setting dailyCategorySetting
	ok, err := s.load(ctx, settingDailyCategory, &setting)
	if err != nil || !ok {
		return "", time.Time{}, false, err
	}
	return setting.Name, setting.Day, true, nil
}

func (s *SettingsStore) SetDailyCategory(ctx context.Context, name string, day time.Time) error {
	return s.save(ctx, settingDailyCategory, dailyCategorySetting{Name: name, Day: day.UTC()})
}

func (s *SettingsStore) load(ctx context.Context, id string, out interface{}) (bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM bot_settings WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load setting %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("unmarshal setting %s: %w", id, err)
	}
	return true, nil
}

func (s *SettingsStore) save(ctx context.Context, id string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal setting %s: %w", id, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO bot_settings (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		id, raw)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", id, err)
	}
	return nil
}
