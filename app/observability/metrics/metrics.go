package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	AgentCallsTotal        metric.Int64Counter
	AgentDurationSeconds   metric.Float64Histogram
	OAuthLoginsTotal       metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TravelPlanner")
		var err error
		m := &AppMetrics{}

		m.AgentCallsTotal, err = meter.Int64Counter(
			"agent_calls_total",
			metric.WithDescription("Total number of recommendation agent runs by kind and status"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create agent_calls_total: %v", err)
		}

		m.AgentDurationSeconds, err = meter.Float64Histogram(
			"agent_duration_seconds",
			metric.WithDescription("Duration of recommendation agent runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create agent_duration_seconds: %v", err)
		}

		m.OAuthLoginsTotal, err = meter.Int64Counter(
			"oauth_logins_total",
			metric.WithDescription("Total number of OAuth callbacks by provider and status"),
			metric.WithUnit("{login}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create oauth_logins_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it against the current
// global MeterProvider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
