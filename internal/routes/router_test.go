package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logitrack/tracker/internal/api"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/models/dtos"
	"logitrack/tracker/internal/services"
	"logitrack/tracker/internal/timeline"
)

type stubImporter struct{ calls int }

func (s *stubImporter) RunWithID(_ context.Context, runID string, _ services.ImportOptions, _ services.ProgressFunc) (*dtos.ImportResult, error) {
	s.calls++
	return &dtos.ImportResult{OK: true, RunID: runID}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, dtos.SearchParams) (*dtos.SearchResult, error) {
	return &dtos.SearchResult{Rows: []dtos.SearchRow{}, Tier: "none"}, nil
}

type stubDetail struct{}

func (stubDetail) GetDetail(context.Context, string) (*dtos.ShipmentDetail, error) {
	return nil, services.ErrShipmentNotFound
}

func (stubDetail) GetTimeline(context.Context, string) (*timeline.Timeline, error) {
	return nil, services.ErrShipmentNotFound
}

func newTestHandler(t *testing.T, imp *stubImporter, ping api.Pinger) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	deps := &api.Dependencies{
		Services:  &api.Services{Import: imp, Search: stubSearcher{}, Detail: stubDetail{}},
		Metrics:   metrics.NewMetricsRegistryWith(reg),
		BatchSize: 500,
	}
	return RegisterRoutes(deps, RouterConfig{
		AdminToken:     "s3cret",
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		UpSince:        time.Now(),
		Ping:           ping,
		Gatherer:       reg,
	})
}

func okPing(context.Context) error { return nil }

func TestImportRequiresAdminToken(t *testing.T) {
	imp := &stubImporter{}
	h := newTestHandler(t, imp, okPing)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/import", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, imp.calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", nil)
	req.Header.Set(constants.AdminTokenHeader, "s3cret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, imp.calls)
	assert.NotEmpty(t, rr.Header().Get(constants.ImportRunHeader))
}

func TestRoutesMounted(t *testing.T) {
	h := newTestHandler(t, &stubImporter{}, okPing)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/search?q=x", http.StatusOK},
		{http.MethodGet, "/api/v1/detail/S1", http.StatusNotFound},
		{http.MethodGet, "/api/v1/shipments/S1/timeline", http.StatusNotFound},
		{http.MethodGet, "/healthCheck", http.StatusOK},
		{http.MethodGet, "/api/v1/import", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubImporter{}, okPing)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "tracker_http_requests_total"))
}

func TestHealthCheckDown(t *testing.T) {
	h := newTestHandler(t, &stubImporter{}, func(context.Context) error { return errors.New("refused") })

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
