package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"literary-analysis/internal/handler/http/requestid"
)

// jsonLogger captures entries at every level, debug included.
func jsonLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestLogging_AccessLine(t *testing.T) {
	logger, buf := jsonLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"a1"}`)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/analyses?limit=5&offset=10", nil)
	req.Header.Set("User-Agent", "litctl/1.0")
	req = req.WithContext(requestid.WithRequestID(req.Context(), "req-42"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := lastEntry(t, buf)
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/v1/analyses", entry["path"])
	assert.Equal(t, "limit=5&offset=10", entry["query"])
	assert.Equal(t, "litctl/1.0", entry["user_agent"])
	assert.Equal(t, float64(http.StatusCreated), entry["status"])
	assert.Equal(t, float64(len(`{"id":"a1"}`)), entry["bytes"])
	assert.NotContains(t, entry, "client_gone")
}

func TestLogging_Levels(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/v1/analyze/text", http.StatusOK, "INFO"},
		{"/v1/analyze/text", http.StatusUnprocessableEntity, "WARN"},
		{"/v1/analyze/url", http.StatusBadGateway, "ERROR"},
		{"/metrics", http.StatusOK, "DEBUG"},
		{"/health", http.StatusServiceUnavailable, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+http.StatusText(tt.status), func(t *testing.T) {
			logger, buf := jsonLogger()
			h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.want, lastEntry(t, buf)["level"])
		})
	}
}

func TestLogging_SkipsDisabledLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logging(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Empty(t, buf.String(), "probes log at debug")
}

func TestRecover(t *testing.T) {
	for name, value := range map[string]any{
		"string": "index out of range",
		"error":  errors.New("nil map write"),
		"int":    42,
	} {
		t.Run(name, func(t *testing.T) {
			logger, buf := jsonLogger()
			h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic(value)
			}))

			rec := httptest.NewRecorder()
			require.NotPanics(t, func() {
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze/text", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
			entry := lastEntry(t, buf)
			assert.Equal(t, "panic recovered", entry["msg"])
			assert.NotEmpty(t, entry["stack"])
		})
	}
}

func TestRecover_PassesThrough(t *testing.T) {
	logger, buf := jsonLogger()
	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, buf.String())
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	logger, _ := jsonLogger()
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/analyses", nil))
	})
}

func TestLimitRequestBody(t *testing.T) {
	// readAll answers 413 once the body limit is hit.
	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h := LimitRequestBody(1024)(readAll)

	for size, want := range map[int]int{
		0:     http.StatusOK,
		1024:  http.StatusOK,
		1025:  http.StatusRequestEntityTooLarge,
		10240: http.StatusRequestEntityTooLarge,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze/image", strings.NewReader(strings.Repeat("a", size))))
		assert.Equal(t, want, rec.Code, "body of %d bytes", size)
	}
}
