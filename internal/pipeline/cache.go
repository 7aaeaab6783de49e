package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// ResultCache stores completed pipeline results keyed by run ID
type ResultCache interface {
	Put(ctx context.Context, result *types.PipelineResult) error
	Get(ctx context.Context, id string) (*types.PipelineResult, error)
}

// ErrResultNotFound is returned by Get when no result exists for the ID
var ErrResultNotFound = fmt.Errorf("pipeline: result not found")

// MemoryResultCache is a bounded in-process cache with FIFO eviction.
// Safe for concurrent use.
type MemoryResultCache struct {
	mu      sync.RWMutex
	maxSize int
	results map[string]*types.PipelineResult
	order   []string
}

func NewMemoryResultCache(maxSize int) *MemoryResultCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryResultCache{
		maxSize: maxSize,
		results: make(map[string]*types.PipelineResult),
	}
}

func (c *MemoryResultCache) Put(_ context.Context, result *types.PipelineResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("pipeline: result with an ID is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.results[result.ID]; !exists {
		c.order = append(c.order, result.ID)
	}
	c.results[result.ID] = result

	for len(c.order) > c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.results, oldest)
	}
	return nil
}

func (c *MemoryResultCache) Get(_ context.Context, id string) (*types.PipelineResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.results[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return result, nil
}

// Len reports the number of cached results
func (c *MemoryResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// RedisResultCache stores results as JSON in Redis with a TTL, for
// deployments where results must survive a process restart.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisResultCache{client: client, ttl: ttl}
}

func redisResultKey(id string) string {
	return "debate:result:" + id
}

func (c *RedisResultCache) Put(ctx context.Context, result *types.PipelineResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("pipeline: result with an ID is required")
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal pipeline result: %w", err)
	}
	if err := c.client.Set(ctx, redisResultKey(result.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache pipeline result: %w", err)
	}
	return nil
}

func (c *RedisResultCache) Get(ctx context.Context, id string) (*types.PipelineResult, error) {
	data, err := c.client.Get(ctx, redisResultKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch pipeline result: %w", err)
	}
	var result types.PipelineResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal pipeline result: %w", err)
	}
	return &result, nil
}
