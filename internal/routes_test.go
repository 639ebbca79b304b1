package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"tripgen/internal/controllers"
	"tripgen/internal/llm"
	"tripgen/internal/repository"
	"tripgen/internal/services"
	"tripgen/internal/statistic"
	"tripgen/internal/structures"
	"tripgen/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAll struct{}

func (a *allowAll) Check(_ context.Context, _ string) error { return nil }

func newTestApp(t *testing.T) (*App, *testutil.MockMetrics) {
	t.Helper()
	conf := &structures.Config{
		AppName:   "TripPlanGenerator",
		WebServer: structures.Server{Host: "127.0.0.1", Port: 8080},
	}
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	client := llm.NewMockClient(logger)
	repo := repository.NewPlanRepository(nil, &testutil.MockCompressor{}, logger, metrics)
	scheduler := statistic.NewScheduler(conf, logger, repo, metrics)

	gen := controllers.NewGenerateController(logger, services.NewGenerationService(client, &allowAll{}, logger, metrics))
	plans := controllers.NewPlanController(logger, services.NewPlanService(conf, repo, logger, metrics), testutil.NewMockCache())
	health := controllers.NewHealthController(scheduler, repo, client)

	return NewApp(health, scheduler, conf, logger, InitRoutes(gen, plans), metrics, nil, nil), metrics
}

func TestInitRoutes_RegistersAllVersions(t *testing.T) {
	gen := controllers.NewGenerateController(&testutil.MockLogger{}, nil)
	plans := controllers.NewPlanController(&testutil.MockLogger{}, nil, testutil.NewMockCache())
	routes := InitRoutes(gen, plans).GetRoutes()

	require.Len(t, routes, 12)

	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		seen[r.Method+" "+r.Url] = true
	}
	for _, prefix := range []string{"", "/v2", "/v3"} {
		assert.True(t, seen["POST "+prefix+"/generate"], prefix)
		assert.True(t, seen["POST "+prefix+"/plans"], prefix)
		assert.True(t, seen["GET "+prefix+"/plans"], prefix)
		assert.True(t, seen["GET "+prefix+"/plans/{slug}"], prefix)
	}
}

func TestApp_MethodEnforcement(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/generate", nil)
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	rr = httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestApp_InstrumentsApiRoutesByPattern(t *testing.T) {
	app, metrics := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/v2/plans/plan-1700000000000", nil)
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, 1, metrics.Requests["/v2/plans/{slug}:404"])
}

func TestApp_ExposesRateLimitHeadersToBrowsers(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"destination":"Tokyo"}`))
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}

func TestApp_Health(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"store":"disabled"`)
}
