// Package cache provides the identifier-keyed store behind query results.
//
// It holds one timestamped Entry per identifier and answers freshness
// questions against a caller-supplied stale time. Identifiers are derived
// by package querykey; the store never interprets them.
package cache
