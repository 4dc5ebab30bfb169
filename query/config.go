package query

import (
	"fmt"
	"time"

	"github.com/jonwraymond/querycore/cache"
	"github.com/jonwraymond/querycore/observe"
	"github.com/jonwraymond/querycore/querykey"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// DefaultStaleTime is how long fetched data stays fresh when a fetch does
	// not pass WithStaleTime. Zero means data is stale as soon as it is written.
	// Use StaleTimeInfinite to keep data fresh until it is removed.
	// Default: 0
	DefaultStaleTime time.Duration

	// Hasher derives identifiers from keys.
	// Default: querykey.DefaultHasher
	Hasher querykey.Hasher

	// Store holds fetched results. IsFresh and Get run while the client's
	// coordination lock is held, so they must not call back into the client.
	// Default: cache.NewMemoryStore(Clock)
	Store cache.Store

	// Clock stamps the in-memory store and query states.
	// Default: cache.SystemClock()
	Clock cache.Clock

	// Middleware instruments producer invocations, cache hits and coalesced joins.
	// Default: built from Observer if set, otherwise observe.NopMiddleware()
	Middleware *observe.Middleware

	// Observer supplies telemetry when Middleware is nil.
	Observer observe.Observer
}

// Validate checks the configuration for errors.
func (c ClientConfig) Validate() error {
	if c.DefaultStaleTime < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidStaleTime, c.DefaultStaleTime)
	}
	return nil
}

// StaleTimeInfinite keeps fetched data fresh for as long as it is cached.
const StaleTimeInfinite = cache.StaleTimeInfinite

// FetchOption configures a single fetch.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	staleTime time.Duration
	name      string
}

// WithStaleTime overrides the client's default stale time for one fetch.
// Zero or a negative duration forces the producer to run unless a fetch is
// already in flight.
func WithStaleTime(d time.Duration) FetchOption {
	return func(o *fetchOptions) {
		o.staleTime = d
	}
}

// WithName labels the fetch in logs, spans and metrics.
// Key contents are never exported, so the name is the only readable label.
func WithName(name string) FetchOption {
	return func(o *fetchOptions) {
		o.name = name
	}
}

func (c *Client) fetchOptions(opts []FetchOption) fetchOptions {
	o := fetchOptions{staleTime: c.defaultStaleTime}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
