package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/volcano-globe-api/internal/adapter/http"
	"github.com/couchcryptid/volcano-globe-api/internal/catalog"
	"github.com/couchcryptid/volcano-globe-api/internal/domain"
)

type mockService struct {
	snap      domain.CatalogSnapshot
	snapErr   error
	refreshTS time.Time
	refreshed int
	summary   catalog.EruptionSummary
	readyErr  error
}

func (m *mockService) Volcanoes(_ context.Context) (domain.CatalogSnapshot, error) {
	return m.snap, m.snapErr
}

func (m *mockService) RefreshEruptions() time.Time {
	m.refreshed++
	return m.refreshTS
}

func (m *mockService) EruptionSummary(_ context.Context) catalog.EruptionSummary {
	return m.summary
}

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }

func newTestServer(svc *mockService) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", svc, 30*time.Minute, logger)
}

func doRequest(srv *httpadapter.Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestVolcanoListReturns200(t *testing.T) {
	fetchedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockService{snap: domain.CatalogSnapshot{
		Volcanoes: []domain.Volcano{
			{ID: "332010", Name: "Kilauea", Status: domain.StatusErupting},
			{ID: "999001", Name: "Zeta", Status: domain.StatusNormal},
		},
		FetchedAt: fetchedAt,
	}}
	srv := newTestServer(svc)

	rec := doRequest(srv, http.MethodGet, "/api/volcanoes")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Volcanoes   []domain.Volcano `json:"volcanoes"`
		LastUpdated string           `json:"lastUpdated"`
		TotalCount  int              `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Volcanoes, 2)
	assert.Equal(t, "Kilauea", body.Volcanoes[0].Name)
	assert.Equal(t, "2024-06-01T12:00:00Z", body.LastUpdated)
	assert.Equal(t, 2, body.TotalCount)
}

func TestVolcanoListDegradedReturns500WithFallback(t *testing.T) {
	svc := &mockService{
		snap: domain.CatalogSnapshot{
			Volcanoes: domain.FallbackVolcanoes(),
			FetchedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		snapErr: errors.New("geoserver down"),
	}
	srv := newTestServer(svc)

	rec := doRequest(srv, http.MethodGet, "/api/volcanoes")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Volcanoes  []domain.Volcano `json:"volcanoes"`
		TotalCount int              `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.TotalCount, "degraded response still carries the fallback list")
	require.Len(t, body.Volcanoes, 5)
	for _, v := range body.Volcanoes {
		assert.Equal(t, domain.StatusErupting, v.Status)
	}
}

func TestRefreshInvalidatesEruptionCache(t *testing.T) {
	svc := &mockService{refreshTS: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	srv := newTestServer(svc)

	rec := doRequest(srv, http.MethodPost, "/api/volcanoes/refresh")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.refreshed)

	var body struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, "2024-06-01T12:00:00Z", body.Timestamp)
}

func TestRefreshRejectsGet(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := doRequest(srv, http.MethodGet, "/api/volcanoes/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEruptionStatus(t *testing.T) {
	svc := &mockService{summary: catalog.EruptionSummary{
		Count: 2,
		Eruptions: []domain.ActiveEruption{
			{VolcanoID: "211060", VolcanoName: "Etna", StartDate: "2023-11-12"},
			{VolcanoID: "332010", VolcanoName: "Kilauea"},
		},
	}}
	srv := newTestServer(svc)

	rec := doRequest(srv, http.MethodGet, "/api/eruptions")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		EruptingCount     int `json:"eruptingCount"`
		EruptingVolcanoes []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			StartDate string `json:"startDate"`
		} `json:"eruptingVolcanoes"`
		DataSource      string `json:"dataSource"`
		RefreshInterval string `json:"refreshInterval"`
		Timestamp       string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.EruptingCount)
	require.Len(t, body.EruptingVolcanoes, 2)
	assert.Equal(t, "Etna", body.EruptingVolcanoes[0].Name)
	assert.Equal(t, "2023-11-12", body.EruptingVolcanoes[0].StartDate)
	assert.Empty(t, body.EruptingVolcanoes[1].StartDate)
	assert.Equal(t, "Smithsonian Global Volcanism Program", body.DataSource)
	assert.Equal(t, "30m0s", body.RefreshInterval)
	assert.NotEmpty(t, body.Timestamp)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := doRequest(srv, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := doRequest(srv, http.MethodGet, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(&mockService{readyErr: errors.New("no snapshot served yet")})
	rec := doRequest(srv, http.MethodGet, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no snapshot served yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := doRequest(srv, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
