package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestNewMetrics_RecordsGeocodeLookups(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	RecordGeocodeLookup(ctx, metrics, true)
	RecordGeocodeLookup(ctx, metrics, true)
	RecordGeocodeLookup(ctx, metrics, false)
	RecordEnrichmentDrop(ctx, metrics, "owner_missing", 2)
	RecordEnrichmentDrop(ctx, metrics, "owner_missing", 0)

	assert.Equal(t, int64(2), collectSum(t, reader, "geocode.cache.hit.count"))
	assert.Equal(t, int64(1), collectSum(t, reader, "geocode.cache.miss.count"))
	assert.Equal(t, int64(2), collectSum(t, reader, "listing.enrichment.dropped.count"))
}

func TestRecorders_NilMetricsAreNoops(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordGeocodeLookup(ctx, nil, true)
		RecordGeocodeFailure(ctx, nil)
		RecordSearch(ctx, nil, "locality", false)
		RecordEnrichmentDrop(ctx, nil, "x", 1)
		RecordBackfill(ctx, nil, "success")
		RecordRateLimited(ctx, nil, "/api/listings/search")
		RecordRequestMetric(ctx, nil, "POST", "/", 200, 0)
		RecordDBMetric(ctx, nil, "find", 0)
	})
}

func TestLoggerFromContext_IncludesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.NotNil(t, LoggerFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
