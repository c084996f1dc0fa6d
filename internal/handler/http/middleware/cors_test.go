package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"https://app.example.com/", "https://*.readers.example.org"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})(okHandler())

	serve := func(method, origin string, preflight bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/v1/analyze/text", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if preflight {
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("preflight from allowed origin", func(t *testing.T) {
		rec := serve(http.MethodOptions, "https://app.example.com", true)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("plain OPTIONS reaches the handler", func(t *testing.T) {
		rec := serve(http.MethodOptions, "https://app.example.com", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin match ignores case", func(t *testing.T) {
		rec := serve(http.MethodPost, "https://APP.example.com", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://APP.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("wildcard subdomain", func(t *testing.T) {
		assert.Equal(t, "https://club.readers.example.org",
			serve(http.MethodGet, "https://club.readers.example.org", false).Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, serve(http.MethodGet, "https://readers.example.org", false).Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, serve(http.MethodGet, "http://club.readers.example.org", false).Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, serve(http.MethodGet, "https://evilreaders.example.org", false).Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		rec := serve(http.MethodGet, "https://evil.example.com", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same origin", func(t *testing.T) {
		rec := serve(http.MethodGet, "", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Vary"))
	})

	t.Run("no origins configured", func(t *testing.T) {
		plain := CORS(CORSConfig{})(okHandler())
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		plain.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
