package query

import (
	"context"
	"fmt"

	"github.com/jonwraymond/querycore/health"
)

// HealthConfig configures a HealthChecker. Zero thresholds are not checked.
type HealthConfig struct {
	// Name is the checker name.
	// Default: "query"
	Name string

	// MaxFetching is the in-flight fetch count above which the client is degraded.
	MaxFetching int

	// MaxEntries is the cached entry count above which the client is degraded.
	MaxEntries int
}

// Validate checks the configuration for errors.
func (c HealthConfig) Validate() error {
	if c.MaxFetching < 0 {
		return fmt.Errorf("%w: MaxFetching=%d", ErrInvalidThreshold, c.MaxFetching)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("%w: MaxEntries=%d", ErrInvalidThreshold, c.MaxEntries)
	}
	return nil
}

// HealthChecker reports a client's load as a health.Checker.
type HealthChecker struct {
	client *Client
	config HealthConfig
}

// NewHealthChecker creates a checker for client.
func NewHealthChecker(client *Client, config HealthConfig) (*HealthChecker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = "query"
	}
	return &HealthChecker{client: client, config: config}, nil
}

// Name returns the name of this checker.
func (h *HealthChecker) Name() string {
	return h.config.Name
}

// Check reports degraded when a configured threshold is exceeded.
func (h *HealthChecker) Check(ctx context.Context) health.Result {
	if err := ctx.Err(); err != nil {
		return health.Unhealthy("context cancelled", err)
	}

	stats := h.client.Stats()
	details := map[string]any{
		"entries":  stats.Entries,
		"fetching": stats.Fetching,
	}

	switch {
	case h.config.MaxFetching > 0 && stats.Fetching > h.config.MaxFetching:
		return health.Degraded(fmt.Sprintf("%d fetches in flight", stats.Fetching)).WithDetails(details)
	case h.config.MaxEntries > 0 && stats.Entries > h.config.MaxEntries:
		return health.Degraded(fmt.Sprintf("%d cached entries", stats.Entries)).WithDetails(details)
	default:
		return health.Healthy("ok").WithDetails(details)
	}
}

var _ health.Checker = (*HealthChecker)(nil)
