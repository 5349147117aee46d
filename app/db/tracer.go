package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
)

type queryStartKey struct{}

type queryStart struct {
	at time.Time
	op string
}

// QueryMetrics is a pgx.QueryTracer recording the duration and failures of
// every query run through the pool.
type QueryMetrics struct{}

var _ pgx.QueryTracer = QueryMetrics{}

func (QueryMetrics) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), op: queryOperation(data.SQL)})
}

func (QueryMetrics) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("db.operation", start.op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start.at).Seconds(), attrs)
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

// queryOperation is the statement's leading keyword, e.g. SELECT.
func queryOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
