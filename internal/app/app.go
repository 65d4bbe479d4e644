package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/martyfest/party-platform/internal/config"
	"github.com/martyfest/party-platform/internal/db/repository"
	"github.com/martyfest/party-platform/internal/game"
	"github.com/martyfest/party-platform/internal/game/scoring"
	"github.com/martyfest/party-platform/internal/guestbook"
	"github.com/martyfest/party-platform/internal/logging"
	"github.com/martyfest/party-platform/internal/match"
	"github.com/martyfest/party-platform/internal/server"
	"github.com/martyfest/party-platform/internal/vote"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	snapshotWorker *vote.SnapshotWorker
	bgCancels      []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	gameRepo := repository.NewGameRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	guestbookRepo := repository.NewGuestbookRepository(pool)
	voteRepo := repository.NewVoteRepository(pool)

	engine := scoring.NewEngine(scoring.DefaultConfig())
	matchmaker := match.NewMatchmaker(gameRepo, logger)
	keeper := game.NewScoreKeeper(redisClient, logger, cfg.Game.ScoreStateTTL)
	questionCache := game.NewQuestionCache(redisClient, cfg.Game.QuestionCacheTTL)

	voteSvc := vote.NewService(redisClient, logger, vote.ServiceOptions{})
	guestbookSvc := guestbook.NewService(guestbookRepo, logger)

	var snapshotWorker *vote.SnapshotWorker
	if interval := cfg.Vote.SnapshotInterval; interval > 0 {
		snapshotWorker = vote.NewSnapshotWorker(voteSvc, voteRepo, interval, cfg.Vote.SnapshotTopN, logger)
	}

	handlers := server.NewHandlers(
		matchmaker,
		gameRepo,
		questionRepo,
		questionCache,
		engine,
		keeper,
		voteSvc,
		guestbookSvc,
		logger,
	)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, handlers)

	return &Application{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		http:           apiServer,
		snapshotWorker: snapshotWorker,
		bgCancels:      make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.snapshotWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.snapshotWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("vote snapshot worker stopped")
			}
		}()
	}
}
