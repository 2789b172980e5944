package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jmgilman/go/repohealth/cache"
)

// DefaultTTL is how long a successful response stays cached.
const DefaultTTL = time.Hour

// Cached serves Requests from a cache.Store and falls back to a Doer on a
// miss. Only successful responses are stored.
type Cached struct {
	store  cache.Store
	doer   Doer
	ttl    time.Duration
	dedupe bool
	group  singleflight.Group
	logger zerolog.Logger
}

// CachedOption configures a Cached.
type CachedOption func(*Cached)

// WithTTL sets how long successful responses are cached. Non-positive values
// are ignored.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithDeduplication collapses concurrent misses for the same key into a
// single execution whose result is shared by every waiting caller. The
// shared execution runs under the context of the first caller.
func WithDeduplication() CachedOption {
	return func(c *Cached) {
		c.dedupe = true
	}
}

// WithCachedLogger sets the logger used for cache hits and misses.
func WithCachedLogger(logger zerolog.Logger) CachedOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

// NewCached creates a Cached over store and doer.
func NewCached(store cache.Store, doer Doer, opts ...CachedOption) *Cached {
	c := &Cached{
		store:  store,
		doer:   doer,
		ttl:    DefaultTTL,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the JSON payload for r.
//
// A live cache entry is returned without touching the network. On a miss the
// request is executed; a success is stored for the configured TTL and
// returned. Any other outcome is returned as a coded error and nothing is
// stored, so the next call retries the remote.
func (c *Cached) Fetch(ctx context.Context, r Request) (json.RawMessage, error) {
	key := r.Key()

	if v, ok := c.store.Get(key); ok {
		c.logger.Debug().Str("url", r.URL).Msg("cache hit")
		return v, nil
	}

	if !c.dedupe {
		return c.load(ctx, key, r)
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// A caller that finished loading just before this one joined may
		// already have stored the value.
		if v, ok := c.store.Get(key); ok {
			return json.RawMessage(v), nil
		}
		return c.load(ctx, key, r)
	})
	if err != nil {
		return nil, err
	}

	payload := v.(json.RawMessage)
	if shared {
		payload = bytes.Clone(payload)
	}
	return payload, nil
}

func (c *Cached) load(ctx context.Context, key string, r Request) (json.RawMessage, error) {
	c.logger.Debug().Str("url", r.URL).Msg("cache miss")

	o := c.doer.Execute(ctx, r)
	if o.Kind != KindSuccess {
		return nil, o.Err()
	}

	c.store.Put(key, o.Payload, c.ttl)
	return o.Payload, nil
}

// Clear empties the underlying store.
func (c *Cached) Clear() {
	c.store.Clear()
}
