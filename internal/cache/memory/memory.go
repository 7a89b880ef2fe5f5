// Package memory is an in-process cache used when no Redis is configured.
package memory

import (
	"context"
	"encoding"
	"sync"
	"time"

	"github.com/justsurfingit/job-board/internal/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

type Cache struct {
	mu         sync.Mutex
	items      map[string]entry
	defaultTTL time.Duration
	closed     bool
	now        func() time.Time
}

func New(opts cache.Options) *Cache {
	ttl := opts.DefaultTTL
	if ttl == 0 {
		ttl = cache.DefaultOptions().DefaultTTL
	}
	return &Cache{items: map[string]entry{}, defaultTTL: ttl, now: time.Now}
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = append([]byte(nil), v...)
	case encoding.BinaryMarshaler:
		b, err := v.MarshalBinary()
		if err != nil {
			return err
		}
		raw = b
	default:
		return cache.ErrInvalidValue
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return cache.ErrClosed
	}
	c.items[key] = entry{value: raw, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *Cache) Get(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return cache.ErrClosed
	}
	e, ok := c.items[key]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return cache.ErrNotFound
	}

	switch v := value.(type) {
	case *string:
		*v = string(e.value)
	case *[]byte:
		*v = append([]byte(nil), e.value...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(e.value)
	default:
		return cache.ErrInvalidValue
	}
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.items = nil
	return nil
}
