package queue

import (
	"context"
	"errors"

	model "task-market.com/task-market/internal/models"
)

// Publisher hands a persisted notification to the delivery channel.
type Publisher interface {
	Publish(ctx context.Context, n *model.Notification) error
}

var ErrDeliveryUnavailable = errors.New("notification delivery channel unavailable")
