package query

import (
	"context"
	"time"

	"github.com/jonwraymond/querycore/cache"
	"github.com/jonwraymond/querycore/observe"
	"github.com/jonwraymond/querycore/querykey"
)

// Client is one cache scope: a store of fetched results and the in-flight
// fetches that fill it.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Errors: producer errors are returned unchanged to every caller of the fetch.
//   - Isolation: clients never share stores or in-flight fetches.
type Client struct {
	hasher           querykey.Hasher
	store            cache.Store
	clock            cache.Clock
	defaultStaleTime time.Duration
	mw               *observe.Middleware
	coord            *coordinator
}

// Stats is a point-in-time view of a client.
type Stats struct {
	// Entries is the number of cached results.
	Entries int
	// Fetching is the number of producers currently running.
	Fetching int
}

// NewClient creates a client from cfg, applying defaults for unset fields.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Hasher == nil {
		cfg.Hasher = querykey.NewDefaultHasher()
	}
	if cfg.Clock == nil {
		cfg.Clock = cache.SystemClock()
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewMemoryStore(cfg.Clock)
	}
	if cfg.Middleware == nil {
		if cfg.Observer != nil {
			mw, err := observe.MiddlewareFromObserver(cfg.Observer)
			if err != nil {
				return nil, err
			}
			cfg.Middleware = mw
		} else {
			cfg.Middleware = observe.NopMiddleware()
		}
	}

	return &Client{
		hasher:           cfg.Hasher,
		store:            cfg.Store,
		clock:            cfg.Clock,
		defaultStaleTime: cfg.DefaultStaleTime,
		mw:               cfg.Middleware,
		coord:            newCoordinator(cfg.Store, cfg.Middleware),
	}, nil
}

// Hash returns the identifier the client uses for key.
func (c *Client) Hash(key querykey.Key) (string, error) {
	return c.hasher.Hash(key)
}

// SetQueryData writes data for key, replacing any cached entry and stamping
// it with the current time. It fails only if key cannot be hashed.
func (c *Client) SetQueryData(key querykey.Key, data any) error {
	id, err := c.hasher.Hash(key)
	if err != nil {
		return err
	}
	c.store.Set(id, data)
	return nil
}

// GetQueryData returns the cached data for key regardless of its age.
// A key that cannot be hashed is reported as absent.
func (c *Client) GetQueryData(key querykey.Key) (any, bool) {
	entry, ok := c.GetQueryEntry(key)
	return entry.Data, ok
}

// GetQueryEntry returns the cached entry for key, including when it was written.
func (c *Client) GetQueryEntry(key querykey.Key) (cache.Entry, bool) {
	id, err := c.hasher.Hash(key)
	if err != nil {
		return cache.Entry{}, false
	}
	return c.store.Get(id)
}

// FetchQuery returns data for key.
//
// If a fetch for key is already running, FetchQuery waits for it and returns
// its result. Otherwise, if cached data is younger than the stale time, it is
// returned without calling fn. Otherwise fn is called once, its result is
// cached, and every caller waiting on key receives it. A failed fetch leaves
// any cached data untouched.
//
// Cancelling ctx stops this caller from waiting; the fetch itself completes.
func (c *Client) FetchQuery(ctx context.Context, key querykey.Key, fn Producer, opts ...FetchOption) (any, error) {
	if fn == nil {
		return nil, ErrNilProducer
	}
	id, err := c.hasher.Hash(key)
	if err != nil {
		return nil, err
	}
	o := c.fetchOptions(opts)
	return c.fetch(ctx, id, o.name, fn, o.staleTime)
}

// EnsureQueryData returns cached data for key if any exists, whatever its
// age, and fetches it otherwise.
func (c *Client) EnsureQueryData(ctx context.Context, key querykey.Key, fn Producer, opts ...FetchOption) (any, error) {
	if fn == nil {
		return nil, ErrNilProducer
	}
	id, err := c.hasher.Hash(key)
	if err != nil {
		return nil, err
	}
	o := c.fetchOptions(opts)
	meta := observe.QueryMeta{Name: o.name, Hash: id}
	if entry, ok := c.store.Get(id); ok {
		c.mw.CacheHit(ctx, meta)
		return entry.Data, nil
	}
	return c.fetch(ctx, id, o.name, fn, o.staleTime)
}

// RemoveQueryData drops the cached entry for key. A fetch already running
// for key still writes its result when it succeeds.
func (c *Client) RemoveQueryData(key querykey.Key) error {
	id, err := c.hasher.Hash(key)
	if err != nil {
		return err
	}
	c.store.Delete(id)
	return nil
}

// Clear drops every cached entry.
func (c *Client) Clear() {
	c.store.Clear()
}

// IsFetching reports whether a producer is currently running for key.
func (c *Client) IsFetching(key querykey.Key) bool {
	id, err := c.hasher.Hash(key)
	if err != nil {
		return false
	}
	return c.coord.isFetching(id)
}

// FetchingCount returns the number of producers currently running.
func (c *Client) FetchingCount() int {
	return c.coord.fetchingCount()
}

// Stats returns the current entry and in-flight counts.
func (c *Client) Stats() Stats {
	return Stats{
		Entries:  c.store.Len(),
		Fetching: c.coord.fetchingCount(),
	}
}

func (c *Client) fetch(ctx context.Context, id, name string, fn Producer, staleTime time.Duration) (any, error) {
	meta := observe.QueryMeta{Name: name, Hash: id}
	return c.coord.fetchOrJoin(ctx, id, meta, fn, staleTime)
}
