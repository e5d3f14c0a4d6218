package conn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/aevon-lab/eventbook/internal/core/storage"
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a missing or unusable connection setting.
// It is fatal to the calling operation and never retried automatically.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s", e.Key, e.Message)
	}
	return e.Message
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DialFunc establishes a new backend connection for uri.
type DialFunc func(ctx context.Context, uri string) (storage.Backend, error)

// ErrReset is returned to Acquire calls whose in-flight dial was overtaken by Reset.
var ErrReset = errors.New("connection cache was reset during dial")

const dialKey = "dial"

// Cache memoizes a single established backend per process.
//
// Concurrent Acquire calls made while nothing is cached share one in-flight dial.
// A failed dial leaves nothing cached, so the next Acquire starts over.
type Cache struct {
	uri  string
	dial DialFunc

	mu      sync.RWMutex
	backend storage.Backend
	gen     uint64
	group   singleflight.Group
}

// NewCache creates a cache for uri. Nothing is dialed until the first Acquire.
func NewCache(uri string, dial DialFunc) *Cache {
	return &Cache{uri: strings.TrimSpace(uri), dial: dial}
}

// Acquire returns the cached backend, dialing it first if needed.
//
// The shared dial ignores the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx is done. Dials are bounded by the
// adapters' connect timeout.
func (c *Cache) Acquire(ctx context.Context) (storage.Backend, error) {
	if c.uri == "" {
		return nil, &ConfigurationError{Key: "database.uri", Message: "connection URI is required"}
	}

	c.mu.RLock()
	if b := c.backend; b != nil {
		c.mu.RUnlock()
		return b, nil
	}
	c.mu.RUnlock()

	dialCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(dialKey, func() (interface{}, error) {
		return c.establish(dialCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			slog.Error("[Conn] Failed to establish record store connection", "error", res.Err, "shared", res.Shared)
			return nil, res.Err
		}
		return res.Val.(storage.Backend), nil
	}
}

// establish runs inside the single flight.
func (c *Cache) establish(ctx context.Context) (storage.Backend, error) {
	// Double-check after winning the flight; a previous flight may have just finished.
	c.mu.RLock()
	if b := c.backend; b != nil {
		c.mu.RUnlock()
		return b, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	slog.Info("[Conn] Establishing record store connection", "scheme", scheme(c.uri))
	b, err := c.dial(ctx, c.uri)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		if cerr := b.Close(); cerr != nil {
			slog.Warn("[Conn] Failed to close connection dialed before reset", "error", cerr)
		}
		return nil, ErrReset
	}
	c.backend = b
	c.mu.Unlock()

	slog.Info("[Conn] Record store connection established", "scheme", scheme(c.uri))
	return b, nil
}

// Reset closes and forgets the cached backend. The next Acquire dials again.
// A dial already in flight is discarded when it completes.
func (c *Cache) Reset() error {
	c.mu.Lock()
	b := c.backend
	c.backend = nil
	c.gen++
	c.mu.Unlock()

	c.group.Forget(dialKey)

	if b == nil {
		return nil
	}
	if err := b.Close(); err != nil {
		return fmt.Errorf("failed to close record store connection: %w", err)
	}
	return nil
}

// Close releases the cached backend at shutdown.
func (c *Cache) Close() error {
	return c.Reset()
}

func scheme(uri string) string {
	if i := strings.Index(uri, "://"); i > 0 {
		return strings.ToLower(uri[:i])
	}
	return ""
}
