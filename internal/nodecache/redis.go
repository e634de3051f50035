// Package nodecache fronts the page store with a Redis-backed cache of
// hot pages, the way the teacher's internal/cache wraps Redis around its
// repository reads. A page is read far more often than it is written
// (every descent step during insert or search re-fetches its children),
// so caching it by page ID cuts repeated PageStore.Get calls.
package nodecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdtgct/music-fingerprint/internal/metrics"
	"github.com/pdtgct/music-fingerprint/internal/store"
)

// NodeCache wraps a redis.Client with the connection-pooling settings
// the teacher's RedisClient uses.
type NodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates and pings a Redis client. addr == "" disables the cache
// (New returns (nil, nil)); callers should check for a nil *NodeCache
// and fall back to PageStore directly, the same way the teacher omits
// rate limiting when Redis is unavailable.
func New(addr, password string, db int) (*NodeCache, error) {
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("nodecache: failed to connect to redis at %s: %w", addr, err)
	}

	return &NodeCache{client: client, ttl: 10 * time.Minute}, nil
}

// Close closes the underlying Redis connection.
func (c *NodeCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func key(pageID string) string {
	return "fp:node:" + pageID
}

// cachedPage is the wire shape stored in Redis: everything the tree needs
// to treat a cache hit as a substitute for a store.PageStore.Get, without
// a round trip to the backing store.
type cachedPage struct {
	ParentID string `json:"parent_id"`
	IsLeaf   bool   `json:"is_leaf"`
	Blob     []byte `json:"blob"`
}

// Get returns the cached page for pageID, or (nil, false, nil) on a
// cache miss.
func (c *NodeCache) Get(ctx context.Context, pageID string) (*store.Page, bool, error) {
	raw, err := c.client.Get(ctx, key(pageID)).Bytes()
	if err == redis.Nil {
		metrics.Get().NodeCacheMissesTotal.Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("nodecache: get %s: %w", pageID, err)
	}
	var cp cachedPage
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, false, fmt.Errorf("nodecache: decode cached page %s: %w", pageID, err)
	}
	metrics.Get().NodeCacheHitsTotal.Inc()
	return &store.Page{ID: pageID, ParentID: cp.ParentID, IsLeaf: cp.IsLeaf, Blob: cp.Blob}, true, nil
}

// Put stores page under its own ID, overwriting any prior entry.
func (c *NodeCache) Put(ctx context.Context, page *store.Page) error {
	raw, err := json.Marshal(cachedPage{ParentID: page.ParentID, IsLeaf: page.IsLeaf, Blob: page.Blob})
	if err != nil {
		return fmt.Errorf("nodecache: marshal page %s: %w", page.ID, err)
	}
	if err := c.client.Set(ctx, key(page.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("nodecache: set %s: %w", page.ID, err)
	}
	return nil
}

// Invalidate drops the cached page for pageID, e.g. after a picksplit
// rewrites it.
func (c *NodeCache) Invalidate(ctx context.Context, pageID string) error {
	if err := c.client.Del(ctx, key(pageID)).Err(); err != nil {
		return fmt.Errorf("nodecache: del %s: %w", pageID, err)
	}
	return nil
}
