package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/querycore/cache"
	"github.com/jonwraymond/querycore/observe"
)

// Producer fetches the data for one key.
//
// The context carries the values of the caller that started the fetch but is
// never cancelled by it: callers that stop waiting do not abort a fetch other
// callers may have joined.
type Producer func(ctx context.Context) (any, error)

// coordinator runs at most one producer per identifier at a time.
//
// Every decision is made under mu: join the running producer for the
// identifier, else answer from fresh cached data, else register a new flight.
// An identifier is in active exactly while the group holds a call for it, and
// cache hits never register.
type coordinator struct {
	group singleflight.Group
	store cache.Store
	mw    *observe.Middleware

	mu     sync.Mutex
	active map[string]struct{}
}

func newCoordinator(store cache.Store, mw *observe.Middleware) *coordinator {
	return &coordinator{
		store:  store,
		mw:     mw,
		active: make(map[string]struct{}),
	}
}

// fetchOrJoin returns the outcome of the producer already running for id,
// fresh cached data for id, or the outcome of a new producer invocation.
//
// If ctx ends first, fetchOrJoin returns ctx.Err() and the flight keeps running.
func (c *coordinator) fetchOrJoin(ctx context.Context, id string, meta observe.QueryMeta, producer Producer, staleTime time.Duration) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	_, joined := c.active[id]
	if !joined {
		if entry, ok := c.fresh(id, staleTime); ok {
			c.mu.Unlock()
			c.mw.CacheHit(ctx, meta)
			return entry.Data, nil
		}
		c.active[id] = struct{}{}
	}
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (any, error) {
		return c.produce(detached, id, meta, producer)
	})
	c.mu.Unlock()

	select {
	case res := <-ch:
		if joined {
			c.mw.Coalesced(ctx, meta)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fresh returns the entry for id if it is younger than staleTime. Callers hold c.mu.
func (c *coordinator) fresh(id string, staleTime time.Duration) (cache.Entry, bool) {
	if !c.store.IsFresh(id, staleTime) {
		return cache.Entry{}, false
	}
	return c.store.Get(id)
}

// produce invokes the producer once and writes a successful result to the
// store. The flight is deregistered before its waiters are released.
func (c *coordinator) produce(ctx context.Context, id string, meta observe.QueryMeta, producer Producer) (any, error) {
	defer c.deregister(id)

	data, err := c.mw.Wrap(func(ctx context.Context, _ observe.QueryMeta) (any, error) {
		return callProducer(ctx, producer)
	})(ctx, meta)
	if err != nil {
		return nil, err
	}

	c.store.Set(id, data)
	return data, nil
}

// deregister removes id from active and from the group in one step, so the
// next caller either joined this flight already or starts a new one.
func (c *coordinator) deregister(id string) {
	c.mu.Lock()
	delete(c.active, id)
	c.group.Forget(id)
	c.mu.Unlock()
}

func (c *coordinator) isFetching(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[id]
	return ok
}

func (c *coordinator) fetchingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// callProducer invokes producer on its own goroutine and always returns:
// a panic becomes ErrProducerPanic and runtime.Goexit becomes
// ErrProducerExited, so every waiter of the flight is released.
func callProducer(ctx context.Context, producer Producer) (data any, err error) {
	done := make(chan struct{})
	returned := false

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrProducerPanic, r)
			}
		}()
		data, err = producer(ctx)
		returned = true
	}()
	<-done

	switch {
	case returned:
		return data, err
	case err != nil:
		return nil, err
	default:
		return nil, ErrProducerExited
	}
}
