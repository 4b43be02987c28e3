package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asiacup/internal/dataset"
	"asiacup/internal/services"
	"asiacup/pkg/contracts/domain"
)

type fixedClients int

func (c fixedClients) ClientCount() int { return int(c) }

func setupHealthRouter(store *dataset.Store) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := NewHealthHandler(services.NewHealthService(store, fixedClients(2), logger), logger)
	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler_Endpoints(t *testing.T) {
	loaded := dataset.NewStaticStore(&dataset.Table{
		Source:  "asiacup.csv",
		Records: []domain.MatchRecord{{Year: 2023, Team: "India", Opponent: "Nepal"}},
	})
	missing := dataset.NewStore(filepath.Join(t.TempDir(), "missing.csv"), slog.New(slog.NewJSONHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		store      *dataset.Store
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "health", store: loaded, target: "/api/health", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "live", store: missing, target: "/api/health/live", wantStatus: http.StatusOK, wantBody: "alive"},
		{name: "ready", store: loaded, target: "/api/health/ready", wantStatus: http.StatusOK, wantBody: "ready"},
		{name: "not ready", store: missing, target: "/api/health/ready", wantStatus: http.StatusServiceUnavailable, wantBody: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			setupHealthRouter(tt.store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestHealthHandler_ReadyReportsRowsAndClients(t *testing.T) {
	store := dataset.NewStaticStore(&dataset.Table{
		Source:  "asiacup.csv",
		Records: make([]domain.MatchRecord, 3),
	})

	rec := httptest.NewRecorder()
	setupHealthRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Services map[string]services.ServiceHealth `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Services["dataset"].Rows)
	assert.Equal(t, 2, body.Services["websocket"].Clients)
}

func TestHealthHandler_Version(t *testing.T) {
	rec := httptest.NewRecorder()
	setupHealthRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "api_version")
}
