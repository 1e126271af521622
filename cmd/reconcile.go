package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "task-market.com/task-market/internal/configs"
	"task-market.com/task-market/internal/queue"
	repository "task-market.com/task-market/internal/repositories"
	"task-market.com/task-market/internal/services"
)

var reconcileUser string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Redeliver pending notifications once",
	Long:  "Pushes every undelivered notification to Redis and, with --user, recomputes that user's rating from their reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}

		redisClient, err := config.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		store := repository.NewStore(db)
		dispatcher := services.NewNotificationDispatcher(
			store.Notifications,
			queue.NewRedisPublisher(redisClient, cfg.NotificationQueuePrefix, inboxSize),
		)

		delivered, err := services.NewReconciler(store.Notifications, dispatcher, cfg.ReconcileBatchSize).RunOnce(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("delivered", delivered).Msg("outbox reconciled")

		if reconcileUser != "" {
			rating, err := services.NewRatingAggregator(store.Reviews, store.Profiles).Recompute(ctx, reconcileUser)
			if err != nil {
				return err
			}
			log.Info().Str("user_id", reconcileUser).Float64("rating", rating).Msg("rating recomputed")
		}

		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileUser, "user", "", "also recompute this user's rating")
	rootCmd.AddCommand(reconcileCmd)
}
