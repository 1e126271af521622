package queue

import (
	"context"
	"encoding/json"

	"github.com/redis/rueidis"

	model "task-market.com/task-market/internal/models"
)

// RedisPublisher appends each notification to the recipient's inbox list
// (trimmed to the newest maxInbox entries) and publishes it on the recipient's
// channel for live consumers.
type RedisPublisher struct {
	client   rueidis.Client
	prefix   string
	maxInbox int64
}

func NewRedisPublisher(client rueidis.Client, prefix string, maxInbox int64) *RedisPublisher {
	return &RedisPublisher{
		client:   client,
		prefix:   prefix,
		maxInbox: maxInbox,
	}
}

func (p *RedisPublisher) InboxKey(recipientID string) string {
	return p.prefix + ":" + recipientID
}

func (p *RedisPublisher) Publish(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	key := p.InboxKey(n.RecipientID)
	cmds := rueidis.Commands{
		p.client.B().Rpush().Key(key).Element(string(payload)).Build(),
		p.client.B().Ltrim().Key(key).Start(-p.maxInbox).Stop(-1).Build(),
		p.client.B().Publish().Channel(key).Message(string(payload)).Build(),
	}

	for _, res := range p.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}
