package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	sharedCache "github.com/glitchjsy/opendata-api/shared/platform/cache"
)

// DummyCache es una caché en memoria sin expiración que cuenta las llamadas.
type DummyCache struct {
	store   map[string][]byte
	mu      sync.RWMutex
	gets    int
	sets    int
	FailGet bool
}

var _ sharedCache.Cache = (*DummyCache)(nil)

func NewDummyCache() *DummyCache {
	return &DummyCache{store: make(map[string][]byte)}
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++

	if c.FailGet {
		return false, errors.New("cache unavailable")
	}
	data, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.store[key] = data
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *DummyCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.store[key]
	return ok
}

func (c *DummyCache) Sets() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sets
}
