package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	repository "task-market.com/task-market/internal/repositories"
)

const (
	reconcileTimeout    = time.Minute
	maxReconcileBatches = 50
)

// Reconciler re-pushes outbox rows whose delivery failed. Rows are picked up
// oldest first, batchSize at a time, until a pass delivers nothing new.
type Reconciler struct {
	repo       *repository.NotificationRepository
	dispatcher *NotificationDispatcher
	batchSize  int

	cron    *cron.Cron
	running sync.Mutex
}

func NewReconciler(repo *repository.NotificationRepository, dispatcher *NotificationDispatcher, batchSize int) *Reconciler {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Reconciler{
		repo:       repo,
		dispatcher: dispatcher,
		batchSize:  batchSize,
	}
}

// RunOnce performs one reconciliation pass, bounded to maxReconcileBatches
// batches, and returns how many notifications were delivered.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	total := 0
	for batch := 0; batch < maxReconcileBatches; batch++ {
		pending, err := r.repo.ListUndelivered(ctx, r.batchSize)
		if err != nil {
			return total, err
		}
		if len(pending) == 0 {
			return total, nil
		}

		delivered := r.dispatcher.Deliver(ctx, pending)
		total += delivered

		// Channel still down, or the batch was the tail of the outbox.
		if delivered < len(pending) || len(pending) < r.batchSize {
			return total, nil
		}
	}
	return total, nil
}

// Start schedules RunOnce on a cron schedule such as "@every 30s". Overlapping
// runs are skipped.
func (r *Reconciler) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, r.tick)
	if err != nil {
		return err
	}
	r.cron = c
	c.Start()

	log.Info().Str("schedule", schedule).Msg("outbox reconciler started")
	return nil
}

func (r *Reconciler) tick() {
	if !r.running.TryLock() {
		log.Debug().Msg("previous reconciliation still running, skipping")
		return
	}
	defer r.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	delivered, err := r.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Int("delivered", delivered).Msg("outbox reconciliation failed")
		return
	}
	if delivered > 0 {
		log.Info().Int("delivered", delivered).Msg("outbox reconciliation delivered notifications")
	}
}

// Stop halts scheduling and waits for a running pass, or for ctx to end.
func (r *Reconciler) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn().Msg("outbox reconciler stop timed out")
	}
}
