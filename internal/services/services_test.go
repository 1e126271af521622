package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task-market.com/task-market/internal/authz"
	"task-market.com/task-market/internal/cache"
	"task-market.com/task-market/internal/constants"
	model "task-market.com/task-market/internal/models"
	"task-market.com/task-market/internal/queue"
	repository "task-market.com/task-market/internal/repositories"
	"task-market.com/task-market/internal/testutil"
)

var (
	requester = authz.Actor{ID: "requester"}
	worker1   = authz.Actor{ID: "u1"}
	worker2   = authz.Actor{ID: "u2"}
	stranger  = authz.Actor{ID: "stranger"}
	admin     = authz.Actor{ID: "admin", IsAdmin: true}
)

type harness struct {
	db        *gorm.DB
	store     *repository.Store
	publisher *queue.MemoryPublisher
	svc       *Services
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	publisher := queue.NewMemoryPublisher(100)
	// No workers: follow-ups run inline so tests observe them synchronously.
	pool := NewPoolService(0, 1)

	return &harness{
		db:        db,
		store:     store,
		publisher: publisher,
		svc:       New(store, cache.NewMemoryTaskCache(64, time.Minute), publisher, pool, opts),
	}
}

func (h *harness) openTask(t *testing.T) *model.Task {
	t.Helper()
	task, err := h.svc.Tasks.CreateTask(context.Background(), requester, TaskInput{
		Title:       "Carry a couch",
		Description: "Third floor, no elevator",
		Price:       40,
	})
	require.NoError(t, err)
	return task
}

func (h *harness) apply(t *testing.T, task *model.Task, actor authz.Actor) *model.Application {
	t.Helper()
	app, err := h.svc.Applications.Apply(context.Background(), actor, task.ID, ApplyInput{})
	require.NoError(t, err)
	return app
}

// inProgressTask returns a task accepted by worker1.
func (h *harness) inProgressTask(t *testing.T) *model.Task {
	t.Helper()
	task := h.openTask(t)
	app := h.apply(t, task, worker1)
	_, err := h.svc.Applications.Accept(context.Background(), requester, task.ID, app.ID)
	require.NoError(t, err)
	return h.reload(t, task.ID)
}

func (h *harness) completedTask(t *testing.T) *model.Task {
	t.Helper()
	task := h.inProgressTask(t)
	_, err := h.svc.Tasks.CompleteTask(context.Background(), requester, task.ID)
	require.NoError(t, err)
	return h.reload(t, task.ID)
}

func (h *harness) reload(t *testing.T, id string) *model.Task {
	t.Helper()
	task, err := h.store.Tasks.FindByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func (h *harness) notificationsOf(t *testing.T, taskID string, typ constants.NotificationType) []model.Notification {
	t.Helper()
	all, err := h.store.Notifications.ListByTask(context.Background(), taskID)
	require.NoError(t, err)
	var out []model.Notification
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
