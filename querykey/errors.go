package querykey

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnserializableKey is matched by every error returned when a key
// element has no canonical form.
var ErrUnserializableKey = errors.New("querykey: key is not serializable")

// UnserializableKeyError reports the element that could not be canonicalized.
type UnserializableKeyError struct {
	// Path locates the element inside the key, e.g. "[1].filter.tags[0]".
	Path string

	// Type is the Go type of the offending element.
	Type reflect.Type

	// Reason says why the element was rejected.
	Reason string
}

func (e *UnserializableKeyError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("querykey: key element %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("querykey: key element %s (%s): %s", e.Path, e.Type, e.Reason)
}

// Is reports whether target is ErrUnserializableKey.
func (e *UnserializableKeyError) Is(target error) bool {
	return target == ErrUnserializableKey
}
