// Package cache holds the latest successful result of each dashboard query.
//
// Entries are keyed by operation and parameter and stay valid until they are
// invalidated explicitly, typically after a mutation. Concurrent lookups of a
// missing key share a single fetch.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Operation names used by the dashboard.
const (
	OpListRuns = "runs"
	OpGetRun   = "run"
)

// Key identifies a query.
type Key struct {
	Op    string
	Param string
}

func (k Key) String() string {
	if k.Param == "" {
		return k.Op
	}
	return k.Op + "/" + k.Param
}

// ListKey is the key of the run listing.
func ListKey() Key {
	return Key{Op: OpListRuns}
}

// RunKey is the key of a single run.
func RunKey(id string) Key {
	return Key{Op: OpGetRun, Param: id}
}

// FetchFunc loads the value for a key.
type FetchFunc func(ctx context.Context) (any, error)

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]any
	// Invalidation bumps a counter so that a fetch started before it does
	// not store its result: generation per key, opEpoch per operation and
	// epoch for Reset.
	generation map[Key]uint64
	opEpoch    map[string]uint64
	epoch      uint64
	inflight   map[Key]int
	group      singleflight.Group
}

type stamp struct {
	key, op, all uint64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries:    make(map[Key]any),
		generation: make(map[Key]uint64),
		opEpoch:    make(map[string]uint64),
		inflight:   make(map[Key]int),
	}
}

// Peek returns the cached value without fetching.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Get returns the cached value for key, calling fetch on a miss. Errors are
// returned to every waiting caller and never cached.
func (c *Cache) Get(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	if v, ok := c.Peek(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		c.mu.Lock()
		st := c.stampLocked(key)
		c.inflight[key]++
		c.mu.Unlock()

		v, err := fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.inflight[key]--; c.inflight[key] <= 0 {
			delete(c.inflight, key)
		}
		if err != nil {
			return nil, err
		}
		if c.stampLocked(key) == st {
			c.entries[key] = v
		}
		return v, nil
	})
	return v, err
}

func (c *Cache) stampLocked(key Key) stamp {
	return stamp{key: c.generation[key], op: c.opEpoch[key.Op], all: c.epoch}
}

// Set stores a value directly.
func (c *Cache) Set(key Key, v any) {
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
}

// Invalidate drops the given keys so the next Get refetches them.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.generation[key]++
		c.group.Forget(key.String())
	}
}

// InvalidateOp drops every key of an operation, including keys whose
// fetch is still running.
func (c *Cache) InvalidateOp(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opEpoch[op]++
	for key := range c.entries {
		if key.Op == op {
			delete(c.entries, key)
			c.group.Forget(key.String())
		}
	}
	for key := range c.inflight {
		if key.Op == op {
			c.group.Forget(key.String())
		}
	}
}

// Reset drops everything, including results of running fetches.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for key := range c.entries {
		c.group.Forget(key.String())
	}
	for key := range c.inflight {
		c.group.Forget(key.String())
	}
	c.entries = make(map[Key]any)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
