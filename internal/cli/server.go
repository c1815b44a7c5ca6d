package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/config"
	"ultimate-trivia/internal/infra/memory"
	"ultimate-trivia/internal/infra/postgres"
	redisinfra "ultimate-trivia/internal/infra/redis"
	"ultimate-trivia/internal/logging"
	"ultimate-trivia/internal/scheduler"
	transport "ultimate-trivia/internal/transport/http"
	"ultimate-trivia/internal/trivia"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia bot backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.NewDefault()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		profiles app.ProfileStore
		boards   app.LeaderboardStore
		settings app.SettingsStore
	)
	if pool != nil {
		profiles = memory.NewProfileCache(postgres.NewProfileStore(pool))
		boards = postgres.NewLeaderboardStore(pool)
		settings = postgres.NewSettingsStore(pool)
	} else {
		profiles = memory.NewProfileStore()
		boards = memory.NewLeaderboardStore()
		settings = memory.NewSettingsStore()
	}

	var rankCache app.RankCache
	var sessions app.SessionRegistry
	if redisClient != nil {
		rankCache = redisinfra.NewRankCache(redisClient)
		sessionTTL := config.Duration(cfg.Redis.SessionTTL, 30*time.Minute)
		sessions = redisinfra.NewSessionRegistry(redisClient, sessionTTL)
	} else {
		rankCache = memory.NewRankCache()
		sessions = memory.NewSessionRegistry()
	}

	notifier := logNotifier{log: log}
	questions := trivia.NewClient(
		cfg.Trivia.URL,
		config.Duration(cfg.Trivia.Cooldown, trivia.DefaultCooldown),
		cfg.Trivia.MaxRetries,
		log,
	)

	var boardMu sync.Mutex
	leaderboards := app.NewLeaderboardService(&boardMu, profiles, boards, rankCache, log)
	ranking := app.NewRankingEngine(
		&boardMu, profiles, boards, settings, rankCache, notifier,
		config.Duration(cfg.Jobs.WeeklyCycle, app.DefaultWeeklyCycle), log,
	)
	service := app.NewQuizService(app.Deps{
		Profiles:     profiles,
		Boards:       boards,
		Settings:     settings,
		Leaderboards: leaderboards,
		Questions:    questions,
		Sessions:     sessions,
		Notifier:     notifier,
		Log:          log,
	})

	jobs := scheduler.New(ranking, leaderboards, service, profiles, notifier, scheduler.Config{
		ResetCheckInterval:   config.Duration(cfg.Jobs.ResetCheckInterval, scheduler.DefaultResetCheckInterval),
		CacheRefreshInterval: config.Duration(cfg.Jobs.CacheRefreshInterval, app.DefaultRefreshInterval),
		DailyCheckInterval:   config.Duration(cfg.Jobs.DailyCheckInterval, scheduler.DefaultDailyCheckInterval),
	}, log)
	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	go jobs.Run(jobCtx)

	router := transport.NewRouter(transport.RouterDeps{
		Service:       service,
		Leaderboards:  leaderboards,
		WebhookSecret: cfg.Webhook.Secret,
		Log:           log,
	})

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		color.Green("ultimate-trivia listening on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info(ctx, "shutting down")
	case <-ctx.Done():
		log.Info(ctx, "context canceled, shutting down")
	}
	stopJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logNotifier stands in for the chat platform's direct-message delivery.
// The bot process that embeds this backend swaps in its own implementation.
type logNotifier struct {
	log logging.Logger
}

func (n logNotifier) Notify(ctx context.Context, userID, message string) error {
	n.log.Info(ctx, "notify", "user", userID, "message", message)
	return nil
}
