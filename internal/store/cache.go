package store

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/angzarr-io/angzarr/internal/pb"
)

// CachedSnapshotStore wraps a SnapshotStore with a read-through,
// write-through LRU cache keyed by RootKey. Snapshots are read far more
// often than they're written (every LoadEventBook call versus one Put per
// handled command), so caching GetLatest avoids a driver round trip on the
// common path while Put always writes through immediately — a stale cached
// snapshot would silently resurrect an earlier aggregate state.
type CachedSnapshotStore struct {
	backing SnapshotStore
	cache   *lru.Cache[RootKey, *pb.Snapshot]
}

// NewCachedSnapshotStore builds a cache of at most size entries in front of
// backing. A zero or negative size is raised to 1: caching is not disabled,
// the store keeps a single-entry cache.
func NewCachedSnapshotStore(backing SnapshotStore, size int) *CachedSnapshotStore {
	if size <= 0 {
		size = 1
	}
	cache, _ := lru.New[RootKey, *pb.Snapshot](size)
	return &CachedSnapshotStore{backing: backing, cache: cache}
}

func (c *CachedSnapshotStore) Put(ctx context.Context, key RootKey, snap *pb.Snapshot) error {
	if err := c.backing.Put(ctx, key, snap); err != nil {
		return err
	}
	c.cache.Add(key, snap)
	return nil
}

func (c *CachedSnapshotStore) GetLatest(ctx context.Context, key RootKey) (*pb.Snapshot, error) {
	if snap, ok := c.cache.Get(key); ok {
		return snap, nil
	}
	snap, err := c.backing.GetLatest(ctx, key)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		c.cache.Add(key, snap)
	}
	return snap, nil
}

// GetLatestBefore always passes through: it answers temporal/point-in-time
// queries the cache (which only ever tracks the single latest snapshot per
// root) cannot serve correctly.
func (c *CachedSnapshotStore) GetLatestBefore(ctx context.Context, key RootKey, sequence *uint32, at *time.Time) (*pb.Snapshot, error) {
	return c.backing.GetLatestBefore(ctx, key, sequence, at)
}
