package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/martyfest/party-platform/internal/config"
)

// NewHTTPServer wires base routes (health, metrics) and the game, vote
// and guestbook endpoints for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, handlers *Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if handlers != nil {
		mux.HandleFunc("POST /v1/games/join", handlers.JoinGame)
		mux.HandleFunc("POST /v1/games/{id}/answers", handlers.SubmitAnswer)
		mux.HandleFunc("GET /v1/games/{id}/scores", handlers.GameScores)
		mux.HandleFunc("GET /v1/games/{id}/players/{playerID}/answers", handlers.PlayerAnswers)
		mux.HandleFunc("GET /v1/levels/{level}/questions", handlers.LevelQuestions)
		mux.HandleFunc("POST /v1/votes", handlers.CastVote)
		mux.HandleFunc("GET /v1/votes", handlers.VoteTally)
		mux.HandleFunc("POST /v1/guestbook", handlers.AddGuestbookMessage)
		mux.HandleFunc("GET /v1/guestbook", handlers.ListGuestbookMessages)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
