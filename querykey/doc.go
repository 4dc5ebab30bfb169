// Package querykey derives canonical identifiers from structured query keys.
//
// A Key is an ordered sequence of values. Two keys hash to the same
// identifier when their elements are equal, comparing nested maps without
// regard to insertion order. Sequences stay order-significant.
package querykey
