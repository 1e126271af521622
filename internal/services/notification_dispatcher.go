package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/constants"
	"task-market.com/task-market/internal/metrics"
	model "task-market.com/task-market/internal/models"
	"task-market.com/task-market/internal/queue"
	repository "task-market.com/task-market/internal/repositories"
)

// Event is a lifecycle event to fan out to the affected users.
type Event struct {
	Type       constants.NotificationType
	TaskID     string
	ActorID    string
	Recipients []string
	Message    string
	Data       map[string]any
}

// NotificationDispatcher turns events into outbox rows, one per recipient, and
// hands them to the delivery channel. It runs after the triggering
// transaction committed and never reports failure to its caller: a lost
// notification is logged, an undelivered one is retried by the Reconciler.
type NotificationDispatcher struct {
	repo      *repository.NotificationRepository
	publisher queue.Publisher
}

func NewNotificationDispatcher(repo *repository.NotificationRepository, publisher queue.Publisher) *NotificationDispatcher {
	return &NotificationDispatcher{
		repo:      repo,
		publisher: publisher,
	}
}

// Build returns one notification per distinct recipient, skipping the actor.
func (d *NotificationDispatcher) Build(ev Event, now time.Time) []*model.Notification {
	seen := make(map[string]struct{}, len(ev.Recipients))
	out := make([]*model.Notification, 0, len(ev.Recipients))

	for _, recipient := range ev.Recipients {
		if recipient == "" || recipient == ev.ActorID {
			continue
		}
		if _, dup := seen[recipient]; dup {
			continue
		}
		seen[recipient] = struct{}{}

		data := make(map[string]any, len(ev.Data)+2)
		for k, v := range ev.Data {
			data[k] = v
		}
		data["task_id"] = ev.TaskID
		data["actor_id"] = ev.ActorID

		out = append(out, &model.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipient,
			TaskID:      ev.TaskID,
			Type:        ev.Type,
			Title:       ev.Type.Title(),
			Message:     ev.Message,
			Data:        data,
			CreatedAt:   now,
		})
	}
	return out
}

// Dispatch persists and delivers the notifications for ev, returning how many
// rows were written.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, ev Event) int {
	notifications := d.Build(ev, time.Now().UTC())
	if len(notifications) == 0 {
		return 0
	}

	if err := d.repo.CreateBatch(ctx, notifications); err != nil {
		metrics.Notifications.WithLabelValues(string(ev.Type), "persist_failed").Add(float64(len(notifications)))
		for _, n := range notifications {
			log.Error().Err(err).
				Str("event", string(ev.Type)).
				Str("task_id", ev.TaskID).
				Str("recipient_id", n.RecipientID).
				Str("actor_id", ev.ActorID).
				Msg("notification not persisted, needs reconciliation")
		}
		return 0
	}
	metrics.Notifications.WithLabelValues(string(ev.Type), "persisted").Add(float64(len(notifications)))

	items := make([]model.Notification, len(notifications))
	for i, n := range notifications {
		items[i] = *n
	}
	d.Deliver(ctx, items)

	return len(notifications)
}

// Deliver pushes persisted notifications to the delivery channel and records
// the ones that made it. It returns the number delivered.
func (d *NotificationDispatcher) Deliver(ctx context.Context, items []model.Notification) int {
	delivered := make([]string, 0, len(items))
	for i := range items {
		n := &items[i]
		if err := d.publisher.Publish(ctx, n); err != nil {
			metrics.Notifications.WithLabelValues(string(n.Type), "delivery_failed").Inc()
			log.Warn().Err(err).
				Str("notification_id", n.ID).
				Str("recipient_id", n.RecipientID).
				Msg("notification delivery failed, left for reconciler")
			continue
		}
		delivered = append(delivered, n.ID)
	}

	if len(delivered) == 0 {
		return 0
	}
	if err := d.repo.MarkDelivered(ctx, delivered, time.Now().UTC()); err != nil {
		log.Warn().Err(err).Int("count", len(delivered)).Msg("failed to record notification deliveries")
	}
	metrics.Notifications.WithLabelValues("any", "delivered").Add(float64(len(delivered)))
	return len(delivered)
}
