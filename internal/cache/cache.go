// Package cache holds read-through caches for task snapshots. Lifecycle
// operations never read from a cache; they only invalidate it after a write.
//
// Entries are ordered by task version. Invalidate leaves a tombstone carrying
// the version the write produced, and Set never replaces an entry or
// tombstone of a newer version, so a reader that loaded the task before a
// concurrent write cannot put its stale snapshot back.
package cache

import (
	"context"

	model "task-market.com/task-market/internal/models"
)

type TaskCache interface {
	Get(ctx context.Context, id string) (*model.Task, bool)
	Set(ctx context.Context, task *model.Task)
	Invalidate(ctx context.Context, id string, version uint)
}
