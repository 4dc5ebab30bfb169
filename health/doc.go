// Package health reports the load and availability of query clients.
//
// A Checker returns a Result with a Status of healthy, degraded or unhealthy.
// The query package provides a Checker over a client's cached entry and
// in-flight fetch counts; an Aggregator runs several checkers, typically one
// per cache scope, and combines their results into a Report.
//
//	agg := health.NewAggregator(health.AggregatorConfig{Timeout: time.Second})
//	agg.Register(usersChecker)
//	agg.Register(todosChecker)
//	report := agg.CheckAll(ctx)
//	if report.Status != health.StatusHealthy {
//	    logger.Warn(ctx, "query cache degraded", observe.Field{Key: "results", Value: report.Results})
//	}
package health
