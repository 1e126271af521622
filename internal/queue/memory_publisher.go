package queue

import (
	"context"
	"sync"

	model "task-market.com/task-market/internal/models"
)

// MemoryPublisher keeps a bounded per-recipient inbox in process. It is the
// delivery channel when Redis is disabled.
type MemoryPublisher struct {
	mu       sync.Mutex
	inbox    map[string][]model.Notification
	maxInbox int
	down     bool
}

func NewMemoryPublisher(maxInbox int) *MemoryPublisher {
	return &MemoryPublisher{
		inbox:    make(map[string][]model.Notification),
		maxInbox: maxInbox,
	}
}

func (p *MemoryPublisher) Publish(_ context.Context, n *model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.down {
		return ErrDeliveryUnavailable
	}

	items := append(p.inbox[n.RecipientID], *n)
	if len(items) > p.maxInbox {
		items = items[len(items)-p.maxInbox:]
	}
	p.inbox[n.RecipientID] = items
	return nil
}

// SetAvailable toggles the channel; while unavailable Publish fails.
func (p *MemoryPublisher) SetAvailable(up bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down = !up
}

func (p *MemoryPublisher) Inbox(recipientID string) []model.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Notification(nil), p.inbox[recipientID]...)
}
