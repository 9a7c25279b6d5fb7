// Package observe holds the OpenTelemetry instruments for the turn engine and
// the SDK wiring that exports them to Prometheus.
//
// Tests should build Metrics with NewMetrics and a ManualReader-backed
// MeterProvider; Noop returns instruments that record nothing.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/tawfi332/Fsociety-T/backend"

// Turn outcomes recorded on the turns counter.
const (
	OutcomeSuccess            = "success"
	OutcomeServiceUnavailable = "service_unavailable"
	OutcomeMalformedReply     = "malformed_reply"
	OutcomeError              = "error"
)

// Rejection reasons recorded on the rejected submissions counter.
const (
	RejectEmpty   = "empty"
	RejectPending = "pending"
)

// Metrics holds the instruments recorded by the turn controller.
type Metrics struct {
	// Turns counts resolved turns by outcome.
	Turns metric.Int64Counter

	// Rejected counts submissions absorbed without a transcript change.
	Rejected metric.Int64Counter

	// MentorDuration tracks mentor call latency in seconds.
	MentorDuration metric.Float64Histogram

	// Pending is 1 while a turn is in flight.
	Pending metric.Int64UpDownCounter
}

var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Turns, err = m.Int64Counter("fsociety.turns",
		metric.WithDescription("Resolved conversation turns by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Rejected, err = m.Int64Counter("fsociety.submissions.rejected",
		metric.WithDescription("Submissions rejected without a transcript change."),
	); err != nil {
		return nil, err
	}
	if met.MentorDuration, err = m.Float64Histogram("fsociety.mentor.duration",
		metric.WithDescription("Latency of mentor service calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Pending, err = m.Int64UpDownCounter("fsociety.turns.pending",
		metric.WithDescription("Turns currently waiting for the mentor service."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Noop returns Metrics backed by a no-op provider.
func Noop() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		// The no-op provider never fails to create instruments.
		panic(err)
	}
	return m
}

// RecordTurn records one resolved turn and its mentor latency.
func (m *Metrics) RecordTurn(ctx context.Context, outcome string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.Turns.Add(ctx, 1, attrs)
	m.MentorDuration.Record(ctx, seconds, attrs)
}

// RecordRejected records one absorbed submission.
func (m *Metrics) RecordRejected(ctx context.Context, reason string) {
	m.Rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
