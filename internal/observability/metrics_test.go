package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetrics_RecordsLedgerAndTransitions(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCredit(ctx, "A+", 1)
	m.RecordCredit(ctx, "O+", 4)
	m.RecordDebit(ctx, "O+", 2)
	m.RecordTransition(ctx, "appointment", "completed")
	m.RecordRequest(ctx, "/inventory/get", "GET", 200, 5*time.Millisecond)

	assert.Equal(t, int64(5), collectSum(t, reader, "bloodbank_inventory_units_credited_total"))
	assert.Equal(t, int64(2), collectSum(t, reader, "bloodbank_inventory_units_debited_total"))
	assert.Equal(t, int64(1), collectSum(t, reader, "bloodbank_status_transitions_total"))
	assert.Equal(t, int64(1), collectSum(t, reader, "bloodbank_http_requests_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCredit(context.Background(), "A+", 1)
		m.RecordError(context.Background(), "/", "GET", "NOT_FOUND")
	})
}
