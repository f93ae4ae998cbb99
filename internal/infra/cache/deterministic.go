// Package cache keeps the results of deterministic matches so that repeated
// pairings can be replayed instead of played.
package cache

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MRamiBalles/ipd/internal/domain/action"
)

// DefaultSize is the number of pairings kept when no size is given.
const DefaultSize = 4096

// Key identifies a deterministic pairing: two strategy identities under one
// game, with the match length the players were told (-1 when unknown).
// Results stored under a key with a known length are only valid for that
// length; with an unknown length any prefix of a stored result is valid.
type Key struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Game    string `json:"game"`
	Length  int    `json:"length"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s v %s [%s, length %d]", k.Player1, k.Player2, k.Game, k.Length)
}

// Store is durable backing for the cache.
type Store interface {
	Put(ctx context.Context, key Key, result []action.Pair) error
	All(ctx context.Context) (map[Key][]action.Pair, error)
}

// DeterministicCache is a bounded, concurrency-safe map from pairings to the
// action pairs they produce. Only deterministic matches may be stored.
type DeterministicCache struct {
	entries *lru.Cache[Key, []action.Pair]
	mutable atomic.Bool
	store   Store
}

// New creates a mutable cache holding up to size pairings.
func New(size int) (*DeterministicCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[Key, []action.Pair](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	c := &DeterministicCache{entries: entries}
	c.mutable.Store(true)
	return c, nil
}

// WithStore writes every accepted entry through to s.
func (c *DeterministicCache) WithStore(s Store) *DeterministicCache {
	c.store = s
	return c
}

// Mutable reports whether Put accepts new entries.
func (c *DeterministicCache) Mutable() bool { return c.mutable.Load() }

// SetMutable freezes or unfreezes the cache.
func (c *DeterministicCache) SetMutable(m bool) { c.mutable.Store(m) }

// Get returns a copy of the cached result for key.
func (c *DeterministicCache) Get(key Key) ([]action.Pair, bool) {
	result, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return slices.Clone(result), true
}

// Put stores result under key unless the cache is frozen. A shorter result
// never replaces a longer one.
func (c *DeterministicCache) Put(ctx context.Context, key Key, result []action.Pair) (bool, error) {
	if !c.Mutable() {
		return false, nil
	}
	if old, ok := c.entries.Peek(key); ok && len(old) >= len(result) {
		return false, nil
	}
	result = slices.Clone(result)
	c.entries.Add(key, result)
	if c.store != nil {
		if err := c.store.Put(ctx, key, result); err != nil {
			return true, fmt.Errorf("failed to persist cache entry %s: %w", key, err)
		}
	}
	return true, nil
}

// Len returns the number of cached pairings.
func (c *DeterministicCache) Len() int { return c.entries.Len() }

// Keys returns the cached pairings, oldest first.
func (c *DeterministicCache) Keys() []Key { return c.entries.Keys() }

// Purge empties the cache.
func (c *DeterministicCache) Purge() { c.entries.Purge() }

// Load fills the cache from its store, returning the number of entries read.
func (c *DeterministicCache) Load(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	all, err := c.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load cache: %w", err)
	}
	for k, v := range all {
		c.entries.Add(k, v)
	}
	return len(all), nil
}
