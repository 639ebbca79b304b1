package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"tripgen/internal/llm"
	"tripgen/internal/models"
	"tripgen/internal/repository"
	"tripgen/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStatus struct {
	healthy   bool
	totals    map[string]int64
	refreshed time.Time
}

func (s *stubStatus) StoreHealthy() bool       { return s.healthy }
func (s *stubStatus) Totals() map[string]int64 { return s.totals }
func (s *stubStatus) LastRefresh() time.Time   { return s.refreshed }

type enabledRepository struct {
	repository.PlanRepositoryInterface
}

func (e *enabledRepository) Enabled() bool { return true }

func (e *enabledRepository) Ping(_ context.Context) error { return nil }

func (e *enabledRepository) GetTotalCount(_ context.Context, _ models.Version) (int64, error) {
	return 0, nil
}

func healthOf(t *testing.T, hc *HealthController) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHealth_ReturnsOK(t *testing.T) {
	status := &stubStatus{healthy: true, totals: map[string]int64{"v1": 3, "v2": 0, "v3": 1}, refreshed: time.Now()}
	hc := NewHealthController(status, &enabledRepository{}, llm.NewMockClient(&testutil.MockLogger{}))

	resp := healthOf(t, hc)

	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["store"])
	assert.Equal(t, "mock", resp["provider"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Contains(t, resp, "refreshed_at")
	assert.Equal(t, float64(3), resp["plans"].(map[string]interface{})["v1"])
}

func TestHealth_StoreUnreachableIsDegraded(t *testing.T) {
	hc := NewHealthController(&stubStatus{}, &enabledRepository{}, llm.NewMockClient(&testutil.MockLogger{}))

	resp := healthOf(t, hc)

	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "unreachable", resp["store"])
	assert.NotContains(t, resp, "refreshed_at")
}

func TestHealth_StoreDisabled(t *testing.T) {
	repo := repository.NewPlanRepository(nil, &testutil.MockCompressor{}, &testutil.MockLogger{}, testutil.NewMockMetrics())
	hc := NewHealthController(&stubStatus{}, repo, llm.NewMockClient(&testutil.MockLogger{}))

	resp := healthOf(t, hc)

	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "disabled", resp["store"])
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
