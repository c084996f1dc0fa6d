package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeout_FastHandler(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline := r.Context().Deadline()
		assert.True(t, hasDeadline)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"a1"}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"id":"a1"}`, rec.Body.String())
}

func TestTimeout_SlowHandlerGets504(t *testing.T) {
	writeErr := make(chan error, 1)
	h := Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(20 * time.Millisecond)
		_, err := w.Write([]byte("late"))
		writeErr <- err
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze-url", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"request timeout"}`, rec.Body.String())

	select {
	case err := <-writeErr:
		assert.True(t, errors.Is(err, http.ErrHandlerTimeout))
	case <-time.After(time.Second):
		t.Fatal("handler never returned")
	}
	assert.NotContains(t, rec.Body.String(), "late")
}

func TestTimeout_StartedResponseIsKept(t *testing.T) {
	h := Timeout(30 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestTimeoutWriter_ExpireOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := &timeoutWriter{ResponseWriter: rec}

	require.True(t, tw.expire())
	assert.False(t, tw.expire())

	tw.WriteHeader(http.StatusOK)
	_, err := tw.Write([]byte("x"))
	assert.ErrorIs(t, err, http.ErrHandlerTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
