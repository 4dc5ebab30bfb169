package query

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jonwraymond/querycore/health"
	"github.com/jonwraymond/querycore/querykey"
)

func TestHealthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     HealthConfig
		wantErr bool
	}{
		{"zero", HealthConfig{}, false},
		{"thresholds", HealthConfig{MaxFetching: 10, MaxEntries: 1000}, false},
		{"negative fetching", HealthConfig{MaxFetching: -1}, true},
		{"negative entries", HealthConfig{MaxEntries: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidThreshold) {
				t.Errorf("error %v does not match ErrInvalidThreshold", err)
			}
		})
	}
}

func TestHealthChecker_Entries(t *testing.T) {
	c := newTestClient(t, ClientConfig{})
	hc, err := NewHealthChecker(c, HealthConfig{MaxEntries: 1})
	if err != nil {
		t.Fatal(err)
	}
	if hc.Name() != "query" {
		t.Errorf("Name() = %q, want query", hc.Name())
	}

	_ = c.SetQueryData(querykey.Key{"a"}, 1)
	if r := hc.Check(context.Background()); r.Status != health.StatusHealthy {
		t.Errorf("Status = %v, want healthy", r.Status)
	}

	_ = c.SetQueryData(querykey.Key{"b"}, 2)
	r := hc.Check(context.Background())
	if r.Status != health.StatusDegraded {
		t.Errorf("Status = %v, want degraded", r.Status)
	}
	if r.Details["entries"] != 2 {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestHealthChecker_Fetching(t *testing.T) {
	c := newTestClient(t, ClientConfig{})
	hc, _ := NewHealthChecker(c, HealthConfig{Name: "todos", MaxFetching: 1})

	gate := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.FetchQuery(context.Background(), querykey.Key{"k", i}, func(context.Context) (any, error) {
				<-gate
				return i, nil
			})
		}()
	}
	waitFor(t, "two fetches in flight", func() bool { return c.FetchingCount() == 2 })

	if r := hc.Check(context.Background()); r.Status != health.StatusDegraded {
		t.Errorf("Status = %v, want degraded", r.Status)
	}

	close(gate)
	wg.Wait()
	if r := hc.Check(context.Background()); r.Status != health.StatusHealthy {
		t.Errorf("Status after settlement = %v, want healthy", r.Status)
	}
}

func TestHealthChecker_CancelledContext(t *testing.T) {
	c := newTestClient(t, ClientConfig{})
	hc, _ := NewHealthChecker(c, HealthConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := hc.Check(ctx); r.Status != health.StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
}

func TestHealthChecker_Aggregated(t *testing.T) {
	users := newTestClient(t, ClientConfig{})
	todos := newTestClient(t, ClientConfig{})
	_ = todos.SetQueryData(querykey.Key{"a"}, 1)
	_ = todos.SetQueryData(querykey.Key{"b"}, 2)

	uc, _ := NewHealthChecker(users, HealthConfig{Name: "users", MaxEntries: 1})
	tc, _ := NewHealthChecker(todos, HealthConfig{Name: "todos", MaxEntries: 1})

	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(uc)
	agg.Register(tc)

	report := agg.CheckAll(context.Background())
	if report.Status != health.StatusDegraded {
		t.Errorf("Status = %v, want degraded", report.Status)
	}
	if report.Results["users"].Status != health.StatusHealthy {
		t.Errorf("users = %v, want healthy", report.Results["users"].Status)
	}
}
