// Package observe provides observability primitives for query fetches.
//
// It is a pure instrumentation library: no fetching, no caching, no I/O
// beyond exporter setup. The query client wires a Middleware around every
// producer invocation and reports cache hits and coalesced joins through it.
//
// Telemetry never carries raw query keys; QueryMeta exposes only the query
// name and a digest of the identifier.
package observe
