package analysis

import (
	"log/slog"
	"net/http"
	"time"

	"literary-analysis/internal/common/pagination"
	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/handler/http/auth"
	"literary-analysis/internal/handler/http/pathutil"
	"literary-analysis/internal/handler/http/respond"
	"literary-analysis/internal/observability/logging"
	"literary-analysis/internal/repository"
	analysisUC "literary-analysis/internal/usecase/analysis"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

type ListHandler struct {
	Svc           Analyzer
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists stored analyses.
// @Summary      List analyses
// @Description  Returns stored analyses, newest first, with limit/offset paging and an optional source type filter.
// @Tags         analyses
// @Security     BearerAuth
// @Produce      json
// @Param        limit        query int    false "Items per page" default(20) minimum(1) maximum(100)
// @Param        offset       query int    false "Items to skip" default(0) minimum(0)
// @Param        source_type  query string false "text, url or image"
// @Success      200 {object} ListResponse
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      500 {string} string "Internal server error"
// @Router       /v1/analyses [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	logger := logging.WithRequestID(ctx, h.Logger)

	q := r.URL.Query()
	params, err := pagination.Parse(q, h.PaginationCfg)
	if err != nil {
		pagination.Observe(pagination.OutcomeInvalid, params, 0)
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	sourceType, err := entity.ParseSourceType(q.Get("source_type"))
	if err != nil {
		pagination.Observe(pagination.OutcomeInvalid, params, 0)
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.List(ctx, analysisUC.ListInput{
		Params:  params,
		Filters: repository.AnalysisFilters{SourceType: sourceType},
	})
	if err != nil {
		pagination.Observe(pagination.OutcomeError, params, time.Since(start))
		logger.Error("list analyses failed", slog.Any("page", params), slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Analyses))
	for _, a := range result.Analyses {
		dtos = append(dtos, toDTO(a))
	}

	elapsed := time.Since(start)
	pagination.Observe(pagination.OutcomeOK, params, elapsed)
	logger.Info("list analyses",
		slog.String("user", auth.UserFromContext(ctx)),
		slog.Any("page", params),
		slog.Int("returned", len(dtos)),
		slog.Int64("duration_ms", elapsed.Milliseconds()))

	respond.JSON(w, http.StatusOK, ListResponse{
		Total:    result.Pagination.Total,
		Limit:    result.Pagination.Limit,
		Offset:   result.Pagination.Offset,
		Analyses: dtos,
	})
}

type GetHandler struct {
	Svc    Analyzer
	Logger *slog.Logger
}

// ServeHTTP returns one analysis.
// @Summary      Get analysis
// @Tags         analyses
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Analysis ID"
// @Success      200 {object} DTO
// @Failure      404 {string} string "Analysis not found"
// @Failure      500 {string} string "Internal server error"
// @Router       /v1/analyses/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Error(w, http.StatusNotFound, analysisUC.ErrAnalysisNotFound)
		return
	}

	a, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, logging.WithRequestID(r.Context(), h.Logger), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}

type SimilarHandler struct {
	Svc    Analyzer
	Logger *slog.Logger
}

// ServeHTTP returns the analyses closest to one analysis by embedding
// similarity.
// @Summary      Similar analyses
// @Description  Nearest stored analyses by embedding cosine similarity. Returns 404 when embeddings are disabled or not yet computed.
// @Tags         analyses
// @Security     BearerAuth
// @Produce      json
// @Param        id    path  string true  "Analysis ID"
// @Param        limit query int    false "Number of neighbours" default(5) minimum(1) maximum(50)
// @Success      200 {object} SimilarResponse
// @Failure      400 {string} string "Invalid limit"
// @Failure      404 {string} string "Analysis not found or similarity disabled"
// @Router       /v1/analyses/{id}/similar [get]
func (h SimilarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Error(w, http.StatusNotFound, analysisUC.ErrAnalysisNotFound)
		return
	}
	limit, err := pagination.IntParam(r.URL.Query(), "limit", defaultSimilarLimit, 1, maxSimilarLimit)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	results, err := h.Svc.Similar(r.Context(), id, limit)
	if err != nil {
		writeError(w, logging.WithRequestID(r.Context(), h.Logger), err)
		return
	}

	out := SimilarResponse{AnalysisID: id, Similar: make([]SimilarDTO, 0, len(results))}
	for _, res := range results {
		out.Similar = append(out.Similar, SimilarDTO{DTO: toDTO(res.Analysis), Similarity: res.Similarity})
	}
	respond.JSON(w, http.StatusOK, out)
}
