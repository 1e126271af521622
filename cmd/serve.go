package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/rueidis"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"task-market.com/task-market/internal/cache"
	config "task-market.com/task-market/internal/configs"
	httpapi "task-market.com/task-market/internal/http"
	"task-market.com/task-market/internal/queue"
	repository "task-market.com/task-market/internal/repositories"
	"task-market.com/task-market/internal/services"
)

const inboxSize = 200

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task marketplace HTTP API, the follow-up worker pool and the outbox reconciler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		var (
			taskCache cache.TaskCache = cache.NewMemoryTaskCache(cfg.CacheSize, cfg.CacheTTL)
			publisher queue.Publisher = queue.NewMemoryPublisher(inboxSize)
		)
		if cfg.RedisEnabled {
			redisClient, err := config.NewRedisClient(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			taskCache = cache.NewRedisTaskCache(redisClient, cfg.CachePrefix, cfg.CacheTTL)
			publisher = queue.NewRedisPublisher(redisClient, cfg.NotificationQueuePrefix, inboxSize)
			logRedis(redisClient, cfg.RedisAddr)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store := repository.NewStore(db)
		pool := services.NewPoolService(cfg.FollowUpWorkers, cfg.FollowUpQueueSize)
		svc := services.New(store, taskCache, publisher, pool, services.Options{
			AllowMessagesAfterCompletion: cfg.AllowMessagesAfterCompletion,
		})

		reconciler := services.NewReconciler(store.Notifications, svc.Dispatcher, cfg.ReconcileBatchSize)
		if err := reconciler.Start(cfg.ReconcileSchedule); err != nil {
			return err
		}

		e := echo.New()
		e.HideBanner = true
		httpapi.Register(e, httpapi.NewHandler(svc), httpapi.RouteConfig{
			RateLimitPerMinute: cfg.RateLimit,
			RateLimitBurst:     cfg.RateLimitBurst,
			JWTSecret:          cfg.JWTSecret,
		})

		go func() {
			log.Info().Str("addr", cfg.AppURL).Msg("HTTP server listening")
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("server stopped")
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown failed")
		}
		reconciler.Stop(shutdownCtx)
		pool.Shutdown(shutdownCtx)

		log.Info().Msg("HTTP server, reconciler and worker pool shut down gracefully")
		return nil
	},
}

func logRedis(client rueidis.Client, addr string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis not reachable, deliveries will be reconciled later")
		return
	}
	log.Info().Str("addr", addr).Msg("redis connected")
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
