package query

import (
	"context"
	"testing"

	"github.com/jonwraymond/querycore/querykey"
)

func BenchmarkFetchQuery_CacheHit(b *testing.B) {
	c, _ := NewClient(ClientConfig{DefaultStaleTime: StaleTimeInfinite})
	key := querykey.Key{"todos", map[string]any{"page": 1}}
	fn := func(context.Context) (any, error) { return "v", nil }
	ctx := context.Background()
	_, _ = c.FetchQuery(ctx, key, fn)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.FetchQuery(ctx, key, fn)
	}
}

func BenchmarkFetchQuery_Miss(b *testing.B) {
	c, _ := NewClient(ClientConfig{})
	key := querykey.Key{"todos", map[string]any{"page": 1}}
	fn := func(context.Context) (any, error) { return "v", nil }
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.FetchQuery(ctx, key, fn)
	}
}

func BenchmarkFetchQuery_Parallel(b *testing.B) {
	c, _ := NewClient(ClientConfig{DefaultStaleTime: StaleTimeInfinite})
	key := querykey.Key{"todos"}
	fn := func(context.Context) (any, error) { return "v", nil }
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = c.FetchQuery(ctx, key, fn)
		}
	})
}

func BenchmarkQuery_Fetch(b *testing.B) {
	q, _ := NewQuery(Config[int]{
		Key: querykey.Key{"n"},
		Fn:  func(context.Context) (int, error) { return 1, nil },
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = q.Fetch(ctx)
	}
}
