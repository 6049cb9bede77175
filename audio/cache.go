package audio

import (
	"errors"
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/patrickmn/go-cache"

	"github.com/lixenwraith/invaders/constant"
)

// CachedSource keeps decoded buffers keyed by path so repeated plays skip decoding
// Decoded buffers are immutable; each play reads through its own Buffer.Streamer
type CachedSource struct {
	next  Source
	store *cache.Cache
}

// NewCachedSource wraps next with a TTL cache
func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		next:  next,
		store: cache.New(ttl, constant.AudioCacheSweep),
	}
}

// Load returns the cached buffer or decodes on demand
// Failures are not cached, so a fixed file is picked up on the next play
func (c *CachedSource) Load(path string) (*beep.Buffer, error) {
	if v, ok := c.store.Get(path); ok {
		return v.(*beep.Buffer), nil
	}

	buf, err := c.next.Load(path)
	if err != nil {
		return nil, err
	}
	c.store.Set(path, buf, cache.DefaultExpiration)
	return buf, nil
}

// Preload decodes paths ahead of the first play
// A failing path does not stop the rest; failures are joined
func (c *CachedSource) Preload(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if _, err := c.Load(p); err != nil {
			errs = append(errs, fmt.Errorf("preload %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Invalidate drops one path, or everything when path is empty
func (c *CachedSource) Invalidate(path string) {
	if path == "" {
		c.store.Flush()
		return
	}
	c.store.Delete(path)
}

// Len returns the number of cached clips, including expired but unswept ones
func (c *CachedSource) Len() int {
	return c.store.ItemCount()
}
