package query

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/querycore/cache"
	"github.com/jonwraymond/querycore/querykey"
)

// Config configures a Query.
type Config[T any] struct {
	// Key identifies the query. Required.
	Key querykey.Key

	// Fn produces the query's data. Required.
	Fn func(ctx context.Context) (T, error)

	// InitialData, if set, starts the query in StatusSuccess.
	InitialData *T

	// Client, if set, runs fetches through the client so they share its
	// store and coalesce with other fetches of the same key.
	Client *Client

	// Clock stamps state transitions.
	// Default: the client's clock, or cache.SystemClock()
	Clock cache.Clock

	// Name labels fetches in telemetry when Client is set.
	Name string
}

// Query tracks the fetch lifecycle of one key.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Coalescing: at most one fetch runs per Query; Start while fetching returns the running fetch.
//   - Errors: a failed fetch sets StatusError and returns the producer's error unchanged.
type Query[T any] struct {
	key    querykey.Key
	hash   string
	fn     func(ctx context.Context) (T, error)
	client *Client
	clock  cache.Clock
	name   string

	mu      sync.Mutex
	state   State[T]
	pending *Pending[T]
}

// NewQuery creates a query from cfg. It fails if Fn is nil or Key cannot be hashed.
func NewQuery[T any](cfg Config[T]) (*Query[T], error) {
	if cfg.Fn == nil {
		return nil, ErrNilProducer
	}

	var (
		hash string
		err  error
	)
	if cfg.Client != nil {
		hash, err = cfg.Client.Hash(cfg.Key)
	} else {
		hash, err = querykey.Hash(cfg.Key)
	}
	if err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		if cfg.Client != nil {
			clock = cfg.Client.clock
		} else {
			clock = cache.SystemClock()
		}
	}

	q := &Query[T]{
		key:    cfg.Key,
		hash:   hash,
		fn:     cfg.Fn,
		client: cfg.Client,
		clock:  clock,
		name:   cfg.Name,
	}
	if cfg.InitialData != nil {
		q.state.Data = *cfg.InitialData
		q.state.Status = StatusSuccess
		q.state.DataUpdatedAt = clock.Now()
	}
	return q, nil
}

// Key returns the query's key.
func (q *Query[T]) Key() querykey.Key {
	return q.key
}

// Hash returns the query's identifier.
func (q *Query[T]) Hash() string {
	return q.hash
}

// State returns a snapshot of the query's state.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Start begins a fetch, or returns the running one.
//
// A new fetch sets FetchStatus to fetching before Start returns and leaves
// Status unchanged until it settles. The producer receives ctx without its
// cancellation.
func (q *Query[T]) Start(ctx context.Context) *Pending[T] {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending != nil {
		return q.pending
	}

	p := newPending[T]()
	q.pending = p
	q.state.FetchStatus = FetchStatusFetching

	go q.run(context.WithoutCancel(ctx), p)
	return p
}

// Fetch starts a fetch, or joins the running one, and waits for its result.
func (q *Query[T]) Fetch(ctx context.Context) (T, error) {
	return q.Start(ctx).Wait(ctx)
}

func (q *Query[T]) run(ctx context.Context, p *Pending[T]) {
	var (
		data T
		err  = ErrProducerExited
	)
	defer func() { q.settle(p, data, err) }()

	data, err = q.produce(ctx)
}

// settle applies a fetch result and releases the fetch's waiters.
func (q *Query[T]) settle(p *Pending[T], data T, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err != nil {
		var zero T
		data = zero
		q.state.Data = zero
		q.state.Error = err
		q.state.Status = StatusError
		q.state.ErrorUpdatedAt = q.clock.Now()
	} else {
		q.state.Data = data
		q.state.Error = nil
		q.state.Status = StatusSuccess
		q.state.DataUpdatedAt = q.clock.Now()
		q.state.ErrorUpdatedAt = time.Time{}
		q.state.IsInvalidated = false
	}
	q.state.FetchStatus = FetchStatusIdle
	q.pending = nil

	p.data, p.err = data, err
	close(p.done)
}

func (q *Query[T]) produce(ctx context.Context) (T, error) {
	producer := func(ctx context.Context) (any, error) {
		return q.fn(ctx)
	}

	var (
		v   any
		err error
	)
	if q.client != nil {
		v, err = q.client.fetch(ctx, q.hash, q.name, producer, 0)
	} else {
		v, err = callProducer(ctx, producer)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v)
}
