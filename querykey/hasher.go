package querykey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Key identifies a cacheable unit of data. Elements may be strings, numbers,
// booleans, nil, maps with string keys, slices, arrays and pointers to any of
// those, nested arbitrarily.
type Key []any

// Hasher derives identifiers from keys.
//
// Contract:
// - Determinism: equivalent keys must produce the same identifier, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: keys without a canonical form must fail with an error matching ErrUnserializableKey.
type Hasher interface {
	// Hash returns the canonical identifier for key.
	Hash(key Key) (string, error)
}

// HasherFunc adapts an ordinary function to the Hasher interface.
type HasherFunc func(key Key) (string, error)

// Hash calls f(key).
func (f HasherFunc) Hash(key Key) (string, error) {
	return f(key)
}

// DefaultHasher produces canonical JSON-like identifiers.
type DefaultHasher struct{}

// NewDefaultHasher creates a new default hasher.
func NewDefaultHasher() *DefaultHasher {
	return &DefaultHasher{}
}

// Hash returns Hash(key).
func (h *DefaultHasher) Hash(key Key) (string, error) {
	return Hash(key)
}

// Ensure DefaultHasher implements Hasher
var _ Hasher = (*DefaultHasher)(nil)

// Hash serializes key depth-first into its canonical identifier.
//
// Map properties are written in sorted order, sequences keep their order,
// strings are quoted and numbers use their shortest decimal form, so the
// number 1 and the string "1" never collide while int(1) and float64(1) do.
// Example: ["todos",{"status":"done","userId":1}]
func Hash(key Key) (string, error) {
	e := &encoder{visiting: make(map[visit]struct{})}
	e.buf.WriteByte('[')
	for i, elem := range key {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.encode(reflect.ValueOf(elem), "["+strconv.Itoa(i)+"]"); err != nil {
			return "", err
		}
	}
	e.buf.WriteByte(']')
	return e.buf.String(), nil
}

// Digest returns a short, stable fingerprint of an identifier: the first
// 16 hex characters of its SHA-256. It is meant for telemetry, where the
// identifier itself may carry user data.
func Digest(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:8])
}

var numberType = reflect.TypeFor[json.Number]()

// visit marks a reference-typed value on the current encoding path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type encoder struct {
	buf      strings.Builder
	visiting map[visit]struct{}
}

func (e *encoder) encode(v reflect.Value, path string) error {
	if !v.IsValid() {
		e.buf.WriteString("null")
		return nil
	}

	if v.Type() == numberType {
		return e.encodeNumber(v, path)
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		return e.encode(v.Elem(), path)

	case reflect.Pointer:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		return e.enter(v, 0, path, func() error {
			return e.encode(v.Elem(), path)
		})

	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(v.Bool()))
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(v.Int(), 10))
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
		return nil

	case reflect.Float32:
		return e.encodeFloat(v.Float(), 32, v.Type(), path)

	case reflect.Float64:
		return e.encodeFloat(v.Float(), 64, v.Type(), path)

	case reflect.String:
		e.buf.WriteString(strconv.Quote(v.String()))
		return nil

	case reflect.Slice:
		if v.Len() == 0 {
			e.buf.WriteString("[]")
			return nil
		}
		return e.enter(v, v.Len(), path, func() error {
			return e.encodeSeq(v, path)
		})

	case reflect.Array:
		return e.encodeSeq(v, path)

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return unserializable(path, v.Type(), "map keys must be strings")
		}
		if v.Len() == 0 {
			e.buf.WriteString("{}")
			return nil
		}
		return e.enter(v, 0, path, func() error {
			return e.encodeMap(v, path)
		})

	case reflect.Struct:
		return unserializable(path, v.Type(), "structs have no canonical form, use a map")

	default:
		return unserializable(path, v.Type(), "unsupported kind "+v.Kind().String())
	}
}

// enter runs fn with v marked as being visited, failing if v is already on
// the current path.
func (e *encoder) enter(v reflect.Value, n int, path string, fn func() error) error {
	key := visit{ptr: v.Pointer(), typ: v.Type(), len: n}
	if _, ok := e.visiting[key]; ok {
		return unserializable(path, v.Type(), "cyclic structure")
	}
	e.visiting[key] = struct{}{}
	err := fn()
	delete(e.visiting, key)
	return err
}

func (e *encoder) encodeSeq(v reflect.Value, path string) error {
	e.buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.encode(v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) encodeMap(v reflect.Value, path string) error {
	keys := make([]string, 0, v.Len())
	values := make(map[string]reflect.Value, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		keys = append(keys, k)
		values[k] = iter.Value()
	}
	sort.Strings(keys)

	e.buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.buf.WriteString(strconv.Quote(k))
		e.buf.WriteByte(':')
		if err := e.encode(values[k], path+"."+k); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) encodeFloat(f float64, bits int, t reflect.Type, path string) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return unserializable(path, t, "non-finite number")
	}
	if f == 0 {
		// -0 and 0 are the same number.
		f = 0
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		e.buf.WriteString(strconv.FormatFloat(f, 'f', -1, bits))
		return nil
	}
	e.buf.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
	return nil
}

func (e *encoder) encodeNumber(v reflect.Value, path string) error {
	s := v.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		e.buf.WriteString(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return unserializable(path, v.Type(), "invalid number literal")
	}
	return e.encodeFloat(f, 64, v.Type(), path)
}

func unserializable(path string, t reflect.Type, reason string) error {
	return &UnserializableKeyError{Path: path, Type: t, Reason: reason}
}
