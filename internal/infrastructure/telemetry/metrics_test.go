package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestSyncMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewSyncMetrics(mp.Meter("test"))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordRun(ctx, "ltk_sync", "SUCCESS", 3*time.Second)
	m.RecordRun(ctx, "ltk_sync", "PARTIAL", time.Second)
	m.RecordCreator(ctx, "ltk_sync", "ok")
	m.RecordRecords(ctx, "ltk_sync", "upserted", 4)
	m.RecordRecords(ctx, "ltk_sync", "upserted", 0)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["creatorhub_sync_runs_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["creatorhub_sync_creators_total"]))
	assert.Equal(t, int64(4), sumOf(t, got["creatorhub_sync_records_total"]))
	hist, ok := got["creatorhub_sync_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)

	var nilMetrics *SyncMetrics
	nilMetrics.RecordRun(ctx, "x", "y", 0)
	nilMetrics.RecordCreator(ctx, "x", "y")
	nilMetrics.RecordRecords(ctx, "x", "y", 1)
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewHTTPMetrics(mp.Meter("test"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/creators/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/creators/a", "/creators/b", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := collect(t, reader)
	sum, ok := got["http_server_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	routes := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value("http.route")
		routes[route.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"/creators/:id": 2, "unmatched": 1}, routes)
}
