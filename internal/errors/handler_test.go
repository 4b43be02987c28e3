package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) (*ErrorHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewErrorHandler(logger, includeStack), &buf
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "wrapped context canceled",
			err:        fmt.Errorf("view: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "invalid parameter",
			err:        InvalidParameter("year", "abc"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeInvalidParameter,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", ErrDatasetUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetUnavailable,
			wantCode:   CodeDatasetUnavailable,
		},
		{
			name:       "unsupported format",
			err:        ErrUnsupportedFormat,
			wantStatus: http.StatusNotAcceptable,
			wantType:   TypeUnsupportedFormat,
			wantCode:   CodeUnsupportedFormat,
		},
		{
			name:       "export failure",
			err:        ExportError("filtered csv", fmt.Errorf("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantCode:   CodeExportFailed,
		},
		{
			name:       "storage app error",
			err:        NewStorageError("failed to open dataset", fmt.Errorf("no such file")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetUnavailable,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("invalid year", nil).WithContext("row", 7),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetInvalid,
		},
		{
			name:       "validation app error",
			err:        NewAppValidationError("bad selection", nil),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "not found app error",
			err:        NewAppError(ErrTypeNotFound, "panel not found", nil),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(false)
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/view", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/dashboard/view", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	h, buf := newTestHandler(false)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Empty(t, rec.Body.String())
	assert.Empty(t, buf.String())
}

func TestErrorHandler_HandleError_RequestID(t *testing.T) {
	h, buf := newTestHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/kpis", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-123"))
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, InvalidParameter("year", "20x3"))

	body := decodeProblem(t, rec)
	assert.Equal(t, "req-123", body["trace_id"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "year", details["field"])
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	h, _ := newTestHandler(false)
	rec := httptest.NewRecorder()

	err := NewParsingError("invalid number", nil).WithContext("row", 12).WithContext("column", "fours")
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), err)

	body := decodeProblem(t, rec)
	assert.Equal(t, float64(12), body["row"])
	assert.Equal(t, "fours", body["column"])
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	h, _ := newTestHandler(true)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), fmt.Errorf("boom"))

	body := decodeProblem(t, rec)
	assert.NotEmpty(t, body["stack"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard/view", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestRecoveryMiddleware(t *testing.T) {
	h, buf := newTestHandler(false)
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(h)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, rec)["type"])
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRecoveryMiddleware_PassThrough(t *testing.T) {
	h, _ := newTestHandler(false)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(h)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	h, _ := newTestHandler(false)
	aborting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		RecoveryMiddleware(h)(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
