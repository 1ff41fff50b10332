package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Checkpoint persists the offset of the next unprocessed lead so an
// interrupted run can resume.
type Checkpoint interface {
	Load(ctx context.Context) (offset int, ok bool, err error)
	Save(ctx context.Context, offset int) error
}

// MemoryCheckpoint keeps the offset in process.
type MemoryCheckpoint struct {
	mu     sync.Mutex
	offset int
	ok     bool
}

func (c *MemoryCheckpoint) Load(context.Context) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset, c.ok, nil
}

func (c *MemoryCheckpoint) Save(_ context.Context, offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset, c.ok = offset, true
	return nil
}

// RedisCheckpoint stores the offset under one Redis key.
type RedisCheckpoint struct {
	client redis.Cmdable
	key    string
}

func NewRedisCheckpoint(client redis.Cmdable, key string) *RedisCheckpoint {
	return &RedisCheckpoint{client: client, key: key}
}

func (c *RedisCheckpoint) Load(ctx context.Context) (int, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load checkpoint %s: %w", c.key, err)
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse checkpoint %s: %w", c.key, err)
	}
	return offset, true, nil
}

func (c *RedisCheckpoint) Save(ctx context.Context, offset int) error {
	if err := c.client.Set(ctx, c.key, offset, 0).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", c.key, err)
	}
	return nil
}
