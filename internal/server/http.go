package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillgauge/assessment-engine/internal/attempt"
	"github.com/skillgauge/assessment-engine/internal/auth"
	"github.com/skillgauge/assessment-engine/internal/config"
	"github.com/skillgauge/assessment-engine/internal/logging"
)

// NewHTTPServer wires base routes (health, metrics) and the attempt API.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	tokens *auth.Manager,
	handlers *attempt.HTTPHandlers,
	wsHandler *attempt.WSHandler,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Attempt creation is platform-internal; every other attempt route
	// requires the token issued at creation.
	guard := auth.RequireAttemptToken(tokens, logger)

	mux.HandleFunc("POST /v1/attempts", handlers.Create)
	mux.Handle("POST /v1/attempts/{id}/questions/{qid}/start", guard(http.HandlerFunc(handlers.StartQuestion)))
	mux.Handle("POST /v1/attempts/{id}/answers", guard(http.HandlerFunc(handlers.RecordAnswer)))
	mux.Handle("GET /v1/attempts/{id}/results", guard(http.HandlerFunc(handlers.Results)))
	mux.Handle("GET /v1/attempts/{id}/questions/{qid}/breakdown", guard(http.HandlerFunc(handlers.Breakdown)))
	mux.Handle("DELETE /v1/attempts/{id}", guard(http.HandlerFunc(handlers.Discard)))

	mux.HandleFunc("/ws/attempts", wsHandler.HandleWebSocket)

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
