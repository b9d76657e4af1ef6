package repository

import (
	"sync"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/metrics"
)

// listCache holds the last ListAll result for ttl. Every invalidation bumps the
// generation so a read that raced with a mutation cannot repopulate stale rows.
type listCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	tasks      []*domain.Task
	fetchedAt  time.Time
	valid      bool
	generation uint64
}

func newListCache(ttl time.Duration, now func() time.Time) *listCache {
	return &listCache{ttl: ttl, now: now}
}

// get returns a copy of the cached tasks and the current generation.
func (c *listCache) get() ([]*domain.Task, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl <= 0 || !c.valid || c.now().Sub(c.fetchedAt) >= c.ttl {
		metrics.TaskCache.WithLabelValues("miss").Inc()
		return nil, c.generation, false
	}
	metrics.TaskCache.WithLabelValues("hit").Inc()
	return cloneTasks(c.tasks), c.generation, true
}

// set stores tasks unless the cache was invalidated since generation was read.
func (c *listCache) set(tasks []*domain.Task, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl <= 0 || generation != c.generation {
		return
	}
	c.tasks = cloneTasks(tasks)
	c.fetchedAt = c.now()
	c.valid = true
}

func (c *listCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	c.tasks = nil
	c.generation++
}

func cloneTasks(tasks []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, len(tasks))
	for i, t := range tasks {
		cp := *t
		out[i] = &cp
	}
	return out
}
