package exporters

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"stdout", nil, nil},
		{"none", nil, nil},
		{"", nil, nil},
		{"otlp", map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "http://localhost:4317"}, nil},
		{"otlp", map[string]string{"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT": "http://localhost:4317"}, nil},
		{"otlp", nil, ErrEndpointNotConfigured},
		{"jaeger", map[string]string{"OTEL_EXPORTER_JAEGER_ENDPOINT": "http://localhost:4317"}, nil},
		{"jaeger", nil, ErrEndpointNotConfigured},
		{"zipkin", nil, ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEndpoints(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			exp, err := NewTracingExporter(context.Background(), tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewTracingExporter(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTracingExporter(%q) error = %v", tt.name, err)
			}
			if exp == nil {
				t.Fatal("expected non-nil exporter")
			}
			_ = exp.Shutdown(context.Background())
		})
	}
}

func TestNewMetricsReader(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"stdout", nil, nil},
		{"none", nil, nil},
		{"prometheus", nil, nil},
		{"otlp", map[string]string{"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT": "http://localhost:4317"}, nil},
		{"otlp", nil, ErrEndpointNotConfigured},
		{"badvalue", nil, ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEndpoints(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			reader, err := NewMetricsReader(context.Background(), tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewMetricsReader(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsReader(%q) error = %v", tt.name, err)
			}
			if reader == nil {
				t.Fatal("expected non-nil reader")
			}
		})
	}
}

// clearEndpoints blanks every endpoint variable for the duration of the test.
func clearEndpoints(t *testing.T) {
	t.Helper()
	for _, vars := range [][]string{traceEndpointEnv, metricEndpointEnv, jaegerEndpointEnv} {
		for _, v := range vars {
			t.Setenv(v, "")
		}
	}
}
