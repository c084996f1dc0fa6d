package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, header string) (ctxID, respID string) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(Header)
}

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc", FromContext(WithRequestID(context.Background(), "abc")))
}

func TestMiddleware_KeepsClientID(t *testing.T) {
	for _, id := range []string{"req-42", "0f8c2a7e-3b1d-4c55-9d2e-7a1b3c4d5e6f", "batch:7.item_3"} {
		ctxID, respID := serve(t, id)
		assert.Equal(t, id, ctxID)
		assert.Equal(t, id, respID)
	}
}

func TestMiddleware_GeneratesID(t *testing.T) {
	ctxID, respID := serve(t, "")
	require.NotEmpty(t, ctxID)
	assert.Equal(t, ctxID, respID)
	_, err := uuid.Parse(ctxID)
	assert.NoError(t, err)

	other, _ := serve(t, "")
	assert.NotEqual(t, ctxID, other)
}

func TestMiddleware_ReplacesMalformedID(t *testing.T) {
	tests := map[string]string{
		"log injection": "abc\" level=ERROR msg=\"forged",
		"spaces":        "two words",
		"too long":      strings.Repeat("a", maxLen+1),
		"non ascii":     "réq-1",
	}
	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			ctxID, respID := serve(t, id)
			assert.NotEqual(t, id, ctxID)
			_, err := uuid.Parse(ctxID)
			assert.NoError(t, err)
			assert.Equal(t, ctxID, respID)
		})
	}
}
