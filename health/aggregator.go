package health

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds each CheckAll call.
	// Default: 5 seconds
	Timeout time.Duration

	// MaxConcurrency limits how many checks run at once. Zero means no limit.
	MaxConcurrency int
}

// Report is the combined outcome of every registered checker.
type Report struct {
	Status  Status
	Results map[string]Result
}

// Aggregator runs a set of checkers together.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers []Checker
}

// NewAggregator creates an empty aggregator.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &Aggregator{config: config}
}

// Register adds checker, replacing any checker with the same name.
func (a *Aggregator) Register(checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.index(checker.Name())
	if i >= 0 {
		a.checkers[i] = checker
		return
	}
	a.checkers = append(a.checkers, checker)
}

// Unregister removes the checker named name, if any.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i := a.index(name); i >= 0 {
		a.checkers = slices.Delete(a.checkers, i, i+1)
	}
}

// Names returns the registered checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.checkers))
	for i, c := range a.checkers {
		names[i] = c.Name()
	}
	return names
}

// Check runs the checker named name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	i := a.index(name)
	var checker Checker
	if i >= 0 {
		checker = a.checkers[i]
	}
	a.mu.RUnlock()

	if checker == nil {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return run(ctx, checker), nil
}

// CheckAll runs every checker and reports the most severe status.
// Checks still running at the timeout are reported unhealthy.
func (a *Aggregator) CheckAll(ctx context.Context) Report {
	a.mu.RLock()
	checkers := slices.Clone(a.checkers)
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	results := make([]Result, len(checkers))
	var g errgroup.Group
	if a.config.MaxConcurrency > 0 {
		g.SetLimit(a.config.MaxConcurrency)
	}
	for i, checker := range checkers {
		g.Go(func() error {
			results[i] = run(ctx, checker)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: StatusHealthy, Results: make(map[string]Result, len(checkers))}
	for i, checker := range checkers {
		report.Results[checker.Name()] = results[i]
		report.Status = report.Status.Worse(results[i].Status)
	}
	return report
}

func (a *Aggregator) index(name string) int {
	return slices.IndexFunc(a.checkers, func(c Checker) bool {
		return c.Name() == name
	})
}

// run executes checker, giving up when ctx ends even if the checker does not.
func run(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		done <- checker.Check(ctx)
	}()

	var result Result
	select {
	case result = <-done:
	case <-ctx.Done():
		result = Unhealthy("check timed out", ErrCheckTimeout)
	}
	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	return result
}
