package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/jonwraymond/querycore/querykey"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log line as JSON: %v\nLine: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

// TestLogger_IncludesQueryFields verifies query fields are present in log output.
func TestLogger_IncludesQueryFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	id, _ := querykey.Hash(querykey.Key{"todos", map[string]any{"userId": 7}})
	logger.WithQuery(QueryMeta{Name: "todos", Hash: id}).Info(context.Background(), "test message")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(entries))
	}
	entry := entries[0]

	if entry["query.name"] != "todos" {
		t.Errorf("expected query.name='todos', got %v", entry["query.name"])
	}
	if entry["query.digest"] != querykey.Digest(id) {
		t.Errorf("expected query.digest=%q, got %v", querykey.Digest(id), entry["query.digest"])
	}
	if strings.Contains(buf.String(), "userId") {
		t.Errorf("raw key leaked into log output: %s", buf.String())
	}
	if entry["msg"] != "test message" || entry["level"] != "info" {
		t.Errorf("unexpected msg/level: %v", entry)
	}
	if _, ok := entry["timestamp"].(string); !ok {
		t.Errorf("missing timestamp: %v", entry)
	}
}

// TestLogger_LevelFiltering verifies entries below the level are dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error", Field{Key: "error", Value: "boom"})

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(entries), buf.String())
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("unexpected levels: %v, %v", entries[0]["level"], entries[1]["level"])
	}
	if entries[1]["error"] != "boom" {
		t.Errorf("expected error field, got %v", entries[1]["error"])
	}
}

// TestLogger_Redaction verifies sensitive fields are redacted.
func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	fields := make([]Field, 0, len(RedactedFields)+1)
	for _, k := range RedactedFields {
		fields = append(fields, Field{Key: k, Value: "sensitive"})
	}
	fields = append(fields, Field{Key: "duration_ms", Value: 12.0})

	logger.Info(context.Background(), "msg", fields...)

	entry := decodeLines(t, &buf)[0]
	for _, k := range RedactedFields {
		if entry[k] != "[REDACTED]" {
			t.Errorf("field %q = %v, want [REDACTED]", k, entry[k])
		}
	}
	if entry["duration_ms"] != 12.0 {
		t.Errorf("duration_ms = %v, want 12", entry["duration_ms"])
	}
}

// TestLogger_WithQueryDoesNotMutateParent verifies scoping is copy-on-write.
func TestLogger_WithQueryDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLoggerWithWriter("info", &buf)
	_ = parent.WithQuery(QueryMeta{Name: "child", Hash: "x"})

	parent.Info(context.Background(), "parent")
	entry := decodeLines(t, &buf)[0]
	if _, ok := entry["query.name"]; ok {
		t.Errorf("parent logger picked up child attributes: %v", entry)
	}
}

// TestLogger_ConcurrentWrites verifies lines are never interleaved.
func TestLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l := logger.WithQuery(QueryMeta{Name: "q", Hash: strings.Repeat("x", n)})
			for j := 0; j < 10; j++ {
				l.Info(context.Background(), "line")
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 200 {
		t.Errorf("expected 200 lines, got %d", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if LevelWarn.String() != "warn" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
}
