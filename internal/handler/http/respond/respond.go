// Package respond writes JSON responses. Every error body has the shape
// {"error": "<message>"}; 5xx details go to the log, never to the client.
package respond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

const internalMessage = "internal server error"

func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", slog.Int("status", code), slog.Any("error", err))
	}
}

// Error reports err to the client. Messages of 4xx errors are assumed to be
// client safe and are sent verbatim. For 5xx the error is logged with
// credentials masked and the client only sees "internal server error".
func Error(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.Int("status", code),
			slog.String("error", SanitizeError(err)))
		JSON(w, code, ErrorBody{Error: internalMessage})
		return
	}
	JSON(w, code, ErrorBody{Error: err.Error()})
}

// Public sends msg in place of cause. A non-nil cause is logged with
// credentials masked, at warn level for 4xx and error level otherwise.
//
//	respond.Public(w, http.StatusBadGateway, "could not fetch url", err)
func Public(w http.ResponseWriter, code int, msg string, cause error) {
	if cause != nil {
		level := slog.LevelError
		if code < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(context.Background(), level, msg,
			slog.Int("status", code),
			slog.String("error", SanitizeError(cause)))
	}
	JSON(w, code, ErrorBody{Error: msg})
}
