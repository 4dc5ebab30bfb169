package cache

import (
	"math"
	"time"
)

// StaleTimeInfinite keeps an entry fresh for as long as it exists.
const StaleTimeInfinite time.Duration = math.MaxInt64

// Entry is a cached value and the time it was written.
//
// Entries are replaced wholesale on every write and are never mutated in place.
type Entry struct {
	Data          any
	DataUpdatedAt time.Time
}

// Store maps identifiers to cache entries.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Atomicity: readers observe either the entry before or after a Set, never a partial write.
// - Errors: Get never fails; it returns (Entry{}, false) on miss.
type Store interface {
	// Get returns the current entry for id. Returns (Entry{}, false) on miss.
	Get(id string) (Entry, bool)

	// Set inserts or replaces the entry for id, stamping DataUpdatedAt with the current time.
	Set(id string, data any)

	// IsFresh reports whether an entry exists and is younger than staleTime.
	// A staleTime of zero or less is never fresh.
	IsFresh(id string, staleTime time.Duration) bool

	// Delete removes the entry for id. Idempotent - no-op on miss.
	Delete(id string)

	// Clear removes every entry.
	Clear()

	// Len returns the number of entries.
	Len() int
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f().
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns a Clock backed by time.Now. Its readings carry Go's
// monotonic clock, so durations between them ignore wall clock changes.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}

// isFresh applies the freshness rule to an entry read at now.
func isFresh(entry Entry, now time.Time, staleTime time.Duration) bool {
	if staleTime <= 0 {
		return false
	}
	if staleTime == StaleTimeInfinite {
		return true
	}
	return now.Sub(entry.DataUpdatedAt) < staleTime
}
