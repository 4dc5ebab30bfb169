package query

import "context"

// Pending is the handle of one running fetch. Every Start call made while
// the fetch runs returns the same handle.
type Pending[T any] struct {
	done chan struct{}
	data T
	err  error
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Done is closed once the fetch has settled and the query state reflects it.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the fetch settles or ctx ends.
// Ending ctx abandons the wait only; the fetch still settles.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.data, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
