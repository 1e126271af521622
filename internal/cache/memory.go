package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	model "task-market.com/task-market/internal/models"
)

type memoryEntry struct {
	task      model.Task
	tombstone bool
}

// MemoryTaskCache is a bounded in-process cache whose entries expire after ttl.
type MemoryTaskCache struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, memoryEntry]
}

func NewMemoryTaskCache(size int, ttl time.Duration) *MemoryTaskCache {
	return &MemoryTaskCache{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, ttl),
	}
}

func (c *MemoryTaskCache) Get(_ context.Context, id string) (*model.Task, bool) {
	e, ok := c.lru.Get(id)
	if !ok || e.tombstone {
		return nil, false
	}
	return &e.task, true
}

func (c *MemoryTaskCache) Set(_ context.Context, task *model.Task) {
	c.put(task.ID, memoryEntry{task: *task})
}

func (c *MemoryTaskCache) Invalidate(_ context.Context, id string, version uint) {
	c.put(id, memoryEntry{task: model.Task{ID: id, Version: version}, tombstone: true})
}

func (c *MemoryTaskCache) put(id string, e memoryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.lru.Peek(id); ok && cur.task.Version > e.task.Version {
		return
	}
	c.lru.Add(id, e)
}
