package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal   = "astmatch.requests.total"
	metricRequestDuration = "astmatch.request.duration.seconds"
	metricErrorsTotal     = "astmatch.errors.total"
	metricInflight        = "astmatch.inflight.requests"

	metricFactsTotal        = "astmatch.facts.total"
	metricFactsSkipped      = "astmatch.facts.skipped"
	metricMappingsTotal     = "astmatch.mappings.total"
	metricFileMatchDuration = "astmatch.file.match.duration.seconds"

	attrOp     = "op"
	attrStatus = "status"
	attrKind   = "kind"

	// StatusOK and StatusError are the values of the status attribute.
	StatusOK    = "ok"
	StatusError = "error"
)

// Buckets span sub-millisecond single facts to multi-second batch files.
var durationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// REDMetrics records rate, errors and duration of MCP tool calls and HTTP
// requests.
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics creates the RED instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	requests, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errs, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed requests"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflight,
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflight, err)
	}

	return &REDMetrics{requests: requests, duration: duration, errors: errs, inflight: inflight}, nil
}

// RecordRequest records one completed request.
func (m *REDMetrics) RecordRequest(ctx context.Context, op, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOp, op), attribute.String(attrStatus, status))

	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)

	if status == StatusError {
		m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge; call the result when done.
func (m *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	m.inflight.Add(ctx, 1, attrs)

	return func() { m.inflight.Add(ctx, -1, attrs) }
}

// MatchMetrics records matching engine activity.
type MatchMetrics struct {
	facts    metric.Int64Counter
	skipped  metric.Int64Counter
	mappings metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMatchMetrics creates the matching instruments on mt.
func NewMatchMetrics(mt metric.Meter) (*MatchMetrics, error) {
	facts, err := mt.Int64Counter(metricFactsTotal,
		metric.WithDescription("Semantic diff facts dispatched to a matcher"),
		metric.WithUnit("{fact}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFactsTotal, err)
	}

	skipped, err := mt.Int64Counter(metricFactsSkipped,
		metric.WithDescription("Semantic diff facts rejected before dispatch"),
		metric.WithUnit("{fact}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFactsSkipped, err)
	}

	mappings, err := mt.Int64Counter(metricMappingsTotal,
		metric.WithDescription("Node mappings added"),
		metric.WithUnit("{mapping}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMappingsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileMatchDuration,
		metric.WithDescription("Time to match one file-level diff"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileMatchDuration, err)
	}

	return &MatchMetrics{facts: facts, skipped: skipped, mappings: mappings, duration: duration}, nil
}

// RecordFact records one dispatched fact and the mappings it added.
func (m *MatchMetrics) RecordFact(ctx context.Context, kind string, added int) {
	attrs := metric.WithAttributes(attribute.String(attrKind, kind))

	m.facts.Add(ctx, 1, attrs)
	m.mappings.Add(ctx, int64(added), attrs)
}

// RecordSkipped records a fact that failed validation.
func (m *MatchMetrics) RecordSkipped(ctx context.Context, kind string) {
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}

// RecordFile records the duration of one file-level match.
func (m *MatchMetrics) RecordFile(ctx context.Context, elapsed time.Duration) {
	m.duration.Record(ctx, elapsed.Seconds())
}
