// The cache-sidecar binary runs the resilient cache layer as a standalone
// process for diagnostics: it keeps the remote connection alive, exposes
// readiness on /health and Prometheus metrics on /metrics.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lernwerk/resilient-cache/pkg/cache"
	"github.com/lernwerk/resilient-cache/pkg/connection"
	"github.com/lernwerk/resilient-cache/pkg/localstore"
	"github.com/lernwerk/resilient-cache/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(logging.FromEnv())

	// Configuration from environment
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")

	cfg := connection.DefaultConfig(redisURL)
	cfg.MaxAttempts = getEnvInt("MAX_RECONNECT_ATTEMPTS", cfg.MaxAttempts)
	cfg.BaseDelay = getEnvDurationMS("BACKOFF_BASE_MS", cfg.BaseDelay)
	cfg.MaxDelay = getEnvDurationMS("BACKOFF_MAX_MS", cfg.MaxDelay)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := connection.New(cfg)
	manager.OnStateChange(func(old, new connection.State) {
		logger.Info().
			Str("from", string(old)).
			Str("to", string(new)).
			Msg("Cache connection state changed")
	})
	manager.Start(ctx)
	defer manager.Stop()

	local := localstore.New()
	defer local.Close()

	facade := cache.NewFacade(cache.NewRedisStore(manager.Client()), local, manager)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler(manager, facade))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("redis_url", redisURL).
			Int("max_attempts", cfg.MaxAttempts).
			Msg("Starting cache sidecar")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown")
	}
	logger.Info().Msg("Cache sidecar stopped")
}

// healthHandler reports the connection state. The sidecar is healthy even
// when the remote is down - the cache keeps serving from the local store -
// so the status code is always 200 and the body carries the detail.
func healthHandler(manager *connection.Manager, facade *cache.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":           "ok",
			"connection_state": string(manager.State()),
			"remote_ready":     facade.IsReady(),
		})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationMS(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Millisecond
		}
	}
	return defaultValue
}
