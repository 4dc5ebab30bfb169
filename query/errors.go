package query

import (
	"errors"
	"fmt"
)

var (
	// ErrNilProducer indicates a fetch was requested without a producer.
	ErrNilProducer = errors.New("query: nil producer")

	// ErrTypeMismatch indicates cached or fetched data is not of the requested type.
	ErrTypeMismatch = errors.New("query: data has unexpected type")

	// ErrInvalidStaleTime indicates a negative default stale time.
	ErrInvalidStaleTime = errors.New("query: stale time must not be negative")

	// ErrInvalidThreshold indicates a negative health threshold.
	ErrInvalidThreshold = errors.New("query: health threshold must not be negative")

	// ErrProducerPanic indicates a producer panicked instead of returning.
	ErrProducerPanic = errors.New("query: producer panicked")

	// ErrProducerExited indicates a producer ended its goroutine without returning.
	ErrProducerExited = errors.New("query: producer exited without returning")
)

// typeMismatch reports a value that is not a T.
func typeMismatch[T any](v any) error {
	var want T
	return fmt.Errorf("%w: got %T, want %T", ErrTypeMismatch, v, want)
}

// as converts v to T. A nil v converts to the zero T.
func as[T any](v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, typeMismatch[T](v)
	}
	return t, nil
}
