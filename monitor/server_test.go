package monitor_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/parking-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/parking-sim/monitor"
	"google.golang.org/protobuf/types/known/structpb"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s := monitor.NewServer(":0")
	rec := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestMetricsCountersAccumulateDeltas(t *testing.T) {
	s := monitor.NewServer(":0")
	s.Metrics().Observe(monitor.Sample{Step: 1, Stats: vehicle.Stats{Spawned: 2}, Active: 2})
	s.Metrics().Observe(monitor.Sample{Step: 2, Stats: vehicle.Stats{Spawned: 3, Parked: 1}, Active: 2, Parked: 1})

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "parking_vehicles_spawned_total 3")
	assert.Contains(t, body, "parking_vehicles_parked_total 1")
	assert.Contains(t, body, "parking_vehicles_active 2")
	assert.Contains(t, body, "parking_step 2")
}

func TestSnapshotEndpoint(t *testing.T) {
	s := monitor.NewServer(":0")
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s.Handler(), "/api/lot/snapshot").Code)

	snap, err := structpb.NewStruct(map[string]any{"step": 7.0})
	require.NoError(t, err)
	s.Publish(snap)

	rec := get(t, s.Handler(), "/api/lot/snapshot")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"step":7}`, rec.Body.String())
}
