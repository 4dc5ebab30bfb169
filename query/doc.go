// Package query coordinates fetches of keyed data.
//
// A Client owns one cache scope: a cache.Store of results, an in-flight table
// that coalesces concurrent fetches of the same key into a single producer
// invocation, and the telemetry middleware wrapped around every producer.
// Two clients never share state.
//
// FetchQuery answers from fresh cached data when it can, joins a fetch that
// is already running for the same key otherwise, and only then invokes the
// producer. Successful results are written to the store before any caller is
// released; failures reach every caller unchanged and leave the store alone.
//
// Query tracks the lifecycle of one keyed fetch (pending, success, error and
// its fetch status) for consumers that render loading and error states.
//
// Basic usage:
//
//	client, _ := query.NewClient(query.ClientConfig{DefaultStaleTime: time.Minute})
//	todos, err := client.FetchQuery(ctx, querykey.Key{"todos", map[string]any{"page": 1}},
//		func(ctx context.Context) (any, error) { return api.ListTodos(ctx, 1) })
package query
