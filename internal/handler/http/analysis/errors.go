package analysis

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/handler/http/respond"
	analysisUC "literary-analysis/internal/usecase/analysis"
	"literary-analysis/internal/usecase/fetch"
)

// Messages returned for errors whose detail must stay in the server log.
const (
	msgBlocked        = "url blocked for security reasons"
	msgFetchTimeout   = "timed out fetching url"
	msgFetchFailed    = "could not fetch url"
	msgNoContent      = "no extractable content at url"
	msgOCRUnavailable = "text recognition is unavailable"
	msgInvalidBody    = "invalid request body"
	msgBodyTooLarge   = "request body too large"
)

// writeError maps a use case error onto a status code and a client safe
// message.
//
//   - gate rejection          → 400 generic "blocked" message
//   - fetch timeout           → 504
//   - other fetch failure     → 502
//   - nothing to analyse      → 422
//   - validation failure      → 400
//   - unknown analysis        → 404
//   - anything else           → 500
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var vErr *entity.ValidationError
	var maxErr *http.MaxBytesError

	switch {
	case fetch.IsRejection(err):
		logger.Warn("url rejected",
			slog.String("reason", fetch.Reason(err)),
			slog.Any("error", err))
		respond.Public(w, http.StatusBadRequest, msgBlocked, nil)

	case errors.Is(err, fetch.ErrNoExtractableContent):
		respond.Public(w, http.StatusUnprocessableEntity, msgNoContent, nil)
	case errors.Is(err, fetch.ErrFetchTimeout):
		respond.Public(w, http.StatusGatewayTimeout, msgFetchTimeout, err)
	case errors.Is(err, fetch.ErrFetchTransport),
		errors.Is(err, fetch.ErrFetchHTTPStatus),
		errors.Is(err, fetch.ErrBodyTooLarge):
		respond.Public(w, http.StatusBadGateway, msgFetchFailed, err)

	case errors.Is(err, entity.ErrEmptyText):
		respond.Error(w, http.StatusUnprocessableEntity, entity.ErrEmptyText)
	case errors.Is(err, entity.ErrTextTooShort):
		respond.Error(w, http.StatusBadRequest, err)
	case errors.As(err, &vErr):
		respond.Error(w, http.StatusBadRequest, vErr)

	case errors.Is(err, analysisUC.ErrAnalysisNotFound):
		respond.Error(w, http.StatusNotFound, err)
	case errors.Is(err, analysisUC.ErrSimilarityDisabled),
		errors.Is(err, analysisUC.ErrEmbeddingNotReady):
		respond.Error(w, http.StatusNotFound, err)

	case errors.Is(err, analysisUC.ErrEmptyUpload):
		respond.Error(w, http.StatusBadRequest, analysisUC.ErrEmptyUpload)
	case errors.Is(err, analysisUC.ErrUploadTooLarge), errors.As(err, &maxErr):
		respond.Public(w, http.StatusRequestEntityTooLarge, analysisUC.ErrUploadTooLarge.Error(), nil)
	case errors.Is(err, analysisUC.ErrUnsupportedUpload):
		respond.Error(w, http.StatusUnsupportedMediaType, analysisUC.ErrUnsupportedUpload)
	case errors.Is(err, analysisUC.ErrOCRUnavailable):
		respond.Public(w, http.StatusServiceUnavailable, msgOCRUnavailable, err)

	default:
		respond.Error(w, http.StatusInternalServerError, err)
	}
}

// decodeJSON reads a JSON body into v. Oversized bodies yield 413, anything
// malformed 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Public(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, nil)
			return false
		}
		respond.Public(w, http.StatusBadRequest, msgInvalidBody, nil)
		return false
	}
	return true
}
