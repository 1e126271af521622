package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"
	"github.com/rs/zerolog/log"

	model "task-market.com/task-market/internal/models"
)

// RedisTaskCache shares task snapshots between processes. Redis failures are
// logged and treated as cache misses.
//
// Values are stored as "<version>|<json>"; a tombstone has an empty body.
type RedisTaskCache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

// putIfNotOlder writes ARGV[1]|ARGV[2] unless the key holds a newer version.
var putIfNotOlder = rueidis.NewLuaScript(`
local current = redis.call('GET', KEYS[1])
if current then
  local version = tonumber(string.match(current, '^(%d+)|'))
  if version and version > tonumber(ARGV[1]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1] .. '|' .. ARGV[2], 'EX', ARGV[3])
return 1
`)

func NewRedisTaskCache(client rueidis.Client, prefix string, ttl time.Duration) *RedisTaskCache {
	return &RedisTaskCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisTaskCache) key(id string) string {
	return c.prefix + ":task:" + id
}

func (c *RedisTaskCache) Get(ctx context.Context, id string) (*model.Task, bool) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(id)).Build()).ToString()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			log.Warn().Err(err).Str("task_id", id).Msg("task cache read failed")
		}
		return nil, false
	}

	_, body, ok := strings.Cut(raw, "|")
	if !ok || body == "" {
		return nil, false
	}

	var task model.Task
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		log.Warn().Err(err).Str("task_id", id).Msg("task cache entry is corrupt")
		return nil, false
	}
	return &task, true
}

func (c *RedisTaskCache) Set(ctx context.Context, task *model.Task) {
	raw, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := c.put(ctx, task.ID, task.Version, string(raw)); err != nil {
		log.Warn().Err(err).Str("task_id", task.ID).Msg("task cache write failed")
	}
}

func (c *RedisTaskCache) Invalidate(ctx context.Context, id string, version uint) {
	if err := c.put(ctx, id, version, ""); err != nil {
		log.Warn().Err(err).Str("task_id", id).Msg("task cache invalidation failed")
	}
}

func (c *RedisTaskCache) put(ctx context.Context, id string, version uint, body string) error {
	args := []string{
		strconv.FormatUint(uint64(version), 10),
		body,
		strconv.FormatInt(int64(c.ttl/time.Second), 10),
	}
	return putIfNotOlder.Exec(ctx, c.client, []string{c.key(id)}, args).Error()
}
