// internal/cache/persist.go
//
// Best-effort snapshot persistence. A Storage is any durable key-value store
// (SQLite table, Badger, ...). Snapshots are JSON lists of
// {key, value, createdAt}; loading drops expired entries and never leaves the
// cache unusable.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoSnapshot is returned by a Storage when nothing was saved under a name.
var ErrNoSnapshot = errors.New("cache: no snapshot")

// Storage loads and saves opaque snapshot blobs by cache name.
type Storage interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// snapshotEntry is the on-disk form of one cache entry.
type snapshotEntry[V any] struct {
	Key       string    `json:"key"`
	Value     V         `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Load restores entries from the attached storage. Missing or corrupt
// snapshots are logged and skipped; the returned error is informational only.
// Entries already present in memory win over snapshot entries.
func (c *Cache[V]) Load(ctx context.Context) error {
	if c.storage == nil {
		return nil
	}
	data, err := c.storage.Load(ctx, c.name)
	if errors.Is(err, ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("load cache snapshot")
		return fmt.Errorf("load %s: %w", c.name, err)
	}

	var snap []snapshotEntry[V]
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Warn().Err(err).Msg("corrupt cache snapshot ignored")
		return fmt.Errorf("decode %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	loaded := 0
	for _, se := range snap {
		e := Entry[V]{Value: se.Value, CreatedAt: se.CreatedAt}
		if se.Key == "" || c.expired(e, now) {
			continue
		}
		if _, exists := c.entries[se.Key]; exists {
			continue
		}
		if len(c.entries) >= c.capacity {
			c.evictOldest()
		}
		c.entries[se.Key] = e
		loaded++
	}
	c.log.Debug().Int("entries", loaded).Msg("cache snapshot loaded")
	return nil
}

// Save writes all unexpired entries to the attached storage.
func (c *Cache[V]) Save(ctx context.Context) error {
	if c.storage == nil {
		return nil
	}

	c.mu.Lock()
	now := c.now()
	snap := make([]snapshotEntry[V], 0, len(c.entries))
	for _, k := range c.keysByAge() {
		e := c.entries[k]
		if c.expired(e, now) {
			continue
		}
		snap = append(snap, snapshotEntry[V]{Key: k, Value: e.Value, CreatedAt: e.CreatedAt})
	}
	c.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := c.storage.Save(ctx, c.name, data); err != nil {
		c.log.Warn().Err(err).Msg("save cache snapshot")
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	return nil
}

// Persister is implemented by every Cache instantiation; it lets callers hold
// caches of different value types in one slice.
type Persister interface {
	Name() string
	Load(ctx context.Context) error
	Save(ctx context.Context) error
}

// SaveAll saves each cache and joins the errors.
func SaveAll(ctx context.Context, caches ...Persister) error {
	var errs []error
	for _, p := range caches {
		if err := p.Save(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadAll loads each cache; failures are already logged per cache.
func LoadAll(ctx context.Context, caches ...Persister) {
	for _, p := range caches {
		_ = p.Load(ctx)
	}
}
