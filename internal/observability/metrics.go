package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service's OpenTelemetry instruments. A nil *Metrics is a no-op.
type Metrics struct {
	requests      metric.Int64Counter
	latency       metric.Float64Histogram
	errors        metric.Int64Counter
	ledgerCredits metric.Int64Counter
	ledgerDebits  metric.Int64Counter
	transitions   metric.Int64Counter
}

// NewMetrics registers instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.requests, err = meter.Int64Counter("bloodbank_http_requests_total",
		metric.WithDescription("HTTP requests served"), metric.WithUnit("1")); err != nil {
		return nil, err
	}
	if m.latency, err = meter.Float64Histogram("bloodbank_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.errors, err = meter.Int64Counter("bloodbank_http_errors_total",
		metric.WithDescription("HTTP responses rendered from errors"), metric.WithUnit("1")); err != nil {
		return nil, err
	}
	if m.ledgerCredits, err = meter.Int64Counter("bloodbank_inventory_units_credited_total",
		metric.WithDescription("Units added to inventory"), metric.WithUnit("1")); err != nil {
		return nil, err
	}
	if m.ledgerDebits, err = meter.Int64Counter("bloodbank_inventory_units_debited_total",
		metric.WithDescription("Units removed from inventory"), metric.WithUnit("1")); err != nil {
		return nil, err
	}
	if m.transitions, err = meter.Int64Counter("bloodbank_status_transitions_total",
		metric.WithDescription("Appointment and request status transitions"), metric.WithUnit("1")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(ctx context.Context, route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.latency.Record(ctx, duration.Seconds(), attrs)
}

// RecordError counts an error response by code.
func (m *Metrics) RecordError(ctx context.Context, route, method, code string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
		attribute.String("code", code),
	))
}

// RecordCredit counts units added for a blood group.
func (m *Metrics) RecordCredit(ctx context.Context, bloodGroup string, units int) {
	if m == nil {
		return
	}
	m.ledgerCredits.Add(ctx, int64(units), metric.WithAttributes(attribute.String("blood_group", bloodGroup)))
}

// RecordDebit counts units removed for a blood group.
func (m *Metrics) RecordDebit(ctx context.Context, bloodGroup string, units int) {
	if m == nil {
		return
	}
	m.ledgerDebits.Add(ctx, int64(units), metric.WithAttributes(attribute.String("blood_group", bloodGroup)))
}

// RecordTransition counts a committed status change.
func (m *Metrics) RecordTransition(ctx context.Context, entity, status string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("status", status),
	))
}
