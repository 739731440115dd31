package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fortuna/prospect/internal/api/rest"
	"github.com/fortuna/prospect/internal/api/websocket"
	"github.com/fortuna/prospect/internal/cache"
	"github.com/fortuna/prospect/internal/ingest"
	"github.com/fortuna/prospect/internal/metrics"
	"github.com/fortuna/prospect/internal/publisher"
	"github.com/fortuna/prospect/internal/scheduler"
	"github.com/fortuna/prospect/internal/service"
	"github.com/fortuna/prospect/internal/store"
)

const (
	redisMaxRetries = 30
	redisRetryDelay = 2 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST and WebSocket servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.WithPrefix(serviceName)
	logger.Info("Starting prospect evaluation service", "version", serviceVersion)

	m := metrics.NewService()

	// Redis is optional: without it rosters are fetched on every refresh
	// and nothing is published
	var (
		rosterCache ingest.RosterCache
		refreshPub  ingest.RefreshPublisher
		evalPub     service.EvaluationPublisher
		pinger      rest.Pinger
	)
	if cfg.RedisEnabled {
		redisCache, err := connectRedis(ctx, logger)
		if err != nil {
			return err
		}
		defer redisCache.Close()

		rosterCache = redisCache
		pinger = redisCache

		streams := publisher.NewRedisStreamPublisher(redisCache.Client())
		refreshPub = streams
		if cfg.PublishEvaluations {
			evalPub = streams
		}
		logger.Info("Connected to Redis", "publish_evaluations", cfg.PublishEvaluations)
	} else {
		logger.Warn("Redis disabled, roster cache and event streams are off")
	}

	loader := ingest.NewRosterLoader(newFeedClient(cfg), rosterCache, refreshPub, m)
	rosters := store.NewRosterStore()

	schedulerConfig := scheduler.DefaultConfig()
	schedulerConfig.RefreshInterval = cfg.RefreshInterval
	sched := scheduler.NewOrchestrator(loader, rosters, m, schedulerConfig)

	prospects := service.NewProspectService(rosters, evalPub, m)

	wsServer := websocket.NewServer(cfg.WSPort, prospects, m)
	sched.OnRefresh(wsServer.Hub().BroadcastRostersRefreshed)

	go sched.Start(ctx)
	logger.Info("Scheduler started", "refresh_interval", cfg.RefreshInterval)

	handler := rest.NewHandler(prospects, sched, pinger, metrics.NewHandler())
	restServer := rest.NewServer(cfg.RESTPort, handler, cfg.CORSOrigins)

	errs := make(chan error, 2)
	go func() {
		logger.Info("REST API server listening", "port", cfg.RESTPort)
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	go func() {
		if err := wsServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully")
	case runErr = <-errs:
		logger.Error("Server failed", "error", runErr)
		stop()
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("REST API server shutdown error", "error", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("WebSocket server shutdown error", "error", err)
	}

	logger.Info("Stopped")
	return runErr
}

// connectRedis retries until Redis answers, the attempts run out or ctx ends
func connectRedis(ctx context.Context, logger *log.Logger) (*cache.RedisCache, error) {
	var lastErr error
	for i := 0; i < redisMaxRetries; i++ {
		rc, err := cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err == nil {
			return rc, nil
		}
		lastErr = err

		logger.Warn("Redis connection attempt failed", "attempt", i+1, "max", redisMaxRetries, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisRetryDelay):
		}
	}
	return nil, lastErr
}
