package query

import (
	"context"

	"github.com/jonwraymond/querycore/querykey"
)

// FetchQueryData is FetchQuery for producers of a concrete type.
// It returns ErrTypeMismatch if the cached or shared result is not a T.
func FetchQueryData[T any](ctx context.Context, c *Client, key querykey.Key, fn func(ctx context.Context) (T, error), opts ...FetchOption) (T, error) {
	if fn == nil {
		var zero T
		return zero, ErrNilProducer
	}
	v, err := c.FetchQuery(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v)
}

// QueryData returns the cached data for key as a T.
// It reports false if nothing is cached or the cached data is not a T.
func QueryData[T any](c *Client, key querykey.Key) (T, bool) {
	v, ok := c.GetQueryData(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, err := as[T](v)
	if err != nil {
		return t, false
	}
	return t, true
}
