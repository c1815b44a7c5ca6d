package cli

import (
	"context"
	"fmt"
	"sync"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/config"
	"ultimate-trivia/internal/infra/postgres"
	redisinfra "ultimate-trivia/internal/infra/redis"
	"ultimate-trivia/internal/logging"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewResetWeekCmd forces a weekly tier reset immediately, regardless of
// how long ago the last one ran. Operational escape hatch.
func NewResetWeekCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-week",
		Short: "Force the weekly tier reset now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetWeek(cmd.Context(), *configPath)
		},
	}
}

func runResetWeek(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	log := logging.NewDefault()

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var rankCache app.RankCache
	if cfg.Redis.Addr != "" {
		rankCache = redisinfra.NewRankCache(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	}

	var mu sync.Mutex
	ranking := app.NewRankingEngine(
		&mu,
		postgres.NewProfileStore(pool),
		postgres.NewLeaderboardStore(pool),
		postgres.NewSettingsStore(pool),
		rankCache,
		nil,
		app.DefaultWeeklyCycle,
		log,
	)
	if err := ranking.Reset(ctx); err != nil {
		return err
	}
	log.Info(ctx, "weekly reset forced")
	return nil
}
