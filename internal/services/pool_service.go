package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/metrics"
)

const followUpTimeout = 30 * time.Second

// Job is post-commit work: notification fanout, counters, rating recomputation.
// None of it may affect the outcome of the transition that scheduled it.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type queuedJob struct {
	ctx context.Context
	job Job
}

// PoolService runs follow-up jobs on a fixed set of workers fed by a bounded
// queue. With no workers, a full queue, or after shutdown a job runs inline on
// the submitting goroutine instead of being dropped.
type PoolService struct {
	queue   chan queuedJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	workers int
}

func NewPoolService(workers int, queueSize int) *PoolService {
	if queueSize < 1 {
		queueSize = 1
	}
	p := &PoolService{
		queue:   make(chan queuedJob, queueSize),
		workers: workers,
	}

	for i := 1; i <= workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Submit schedules job. The request context's values are kept but its
// cancellation is not, since jobs outlive the request that caused them.
func (p *PoolService) Submit(ctx context.Context, job Job) {
	ctx = context.WithoutCancel(ctx)

	p.mu.RLock()
	if p.workers > 0 && !p.closed {
		select {
		case p.queue <- queuedJob{ctx: ctx, job: job}:
			p.mu.RUnlock()
			return
		default:
			log.Warn().Str("job", job.Name).Msg("follow-up queue full, running inline")
		}
	}
	p.mu.RUnlock()

	p.run(ctx, 0, job)
}

func (p *PoolService) worker(workerID int) {
	defer p.wg.Done()

	log.Debug().Int("worker", workerID).Msg("follow-up worker started")

	for q := range p.queue {
		p.run(q.ctx, workerID, q.job)
	}

	log.Debug().Int("worker", workerID).Msg("follow-up worker stopped")
}

func (p *PoolService) run(ctx context.Context, workerID int, job Job) {
	ctx, cancel := context.WithTimeout(ctx, followUpTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.FollowUps.WithLabelValues(job.Name, "panic").Inc()
			log.Error().Interface("panic", r).Str("job", job.Name).Int("worker", workerID).Msg("follow-up job panicked")
		}
	}()

	if err := job.Run(ctx); err != nil {
		metrics.FollowUps.WithLabelValues(job.Name, "failed").Inc()
		log.Error().Err(err).Str("job", job.Name).Int("worker", workerID).Msg("follow-up job failed")
		return
	}
	metrics.FollowUps.WithLabelValues(job.Name, "ok").Inc()
}

// Shutdown stops accepting queued work and waits for workers to drain the
// queue, or for ctx to end.
func (p *PoolService) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("follow-up pool shut down cleanly")
	case <-ctx.Done():
		log.Warn().Msg("follow-up pool shutdown timed out")
	}
}
