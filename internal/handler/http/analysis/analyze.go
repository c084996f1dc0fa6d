package analysis

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/handler/http/respond"
	"literary-analysis/internal/observability/logging"
	analysisUC "literary-analysis/internal/usecase/analysis"
)

// multipartOverhead is the allowance for multipart framing and the mode
// field on top of the upload size limit.
const multipartOverhead = 1 << 20

type TextHandler struct {
	Svc    Analyzer
	Logger *slog.Logger
}

// ServeHTTP analyses a text.
// @Summary      Analyze text
// @Description  Scores sentiment, keywords and word statistics of a text and stores the result.
// @Tags         analyze
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body TextRequest true "Text and mode"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Invalid mode or body"
// @Failure      422 {string} string "Text is empty"
// @Failure      429 {string} string "Too many requests"
// @Failure      500 {string} string "Internal server error"
// @Router       /v1/analyze/text [post]
func (h TextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.Svc.AnalyzeText(r.Context(), analysisUC.TextInput{Text: req.Text, Mode: mode})
	if err != nil {
		writeError(w, logging.WithRequestID(r.Context(), h.Logger), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}

type URLHandler struct {
	Svc    Analyzer
	Logger *slog.Logger
}

// ServeHTTP fetches a URL and analyses its readable text.
// @Summary      Analyze URL
// @Description  Checks the URL against the private network blocklist, fetches it, extracts the readable text and analyses it.
// @Tags         analyze
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body URLRequest true "URL and mode"
// @Success      200 {object} DTO
// @Failure      400 {string} string "url blocked for security reasons"
// @Failure      422 {string} string "No extractable content"
// @Failure      429 {string} string "Too many requests"
// @Failure      502 {string} string "Upstream fetch failed"
// @Failure      504 {string} string "Upstream fetch timed out"
// @Router       /v1/analyze/url [post]
func (h URLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.Svc.AnalyzeURL(r.Context(), analysisUC.URLInput{URL: req.URL, Mode: mode})
	if err != nil {
		writeError(w, logging.WithRequestID(r.Context(), h.Logger).With(slog.String("url", req.URL)), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}

type ImageHandler struct {
	Svc            Analyzer
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// ServeHTTP analyses the text of an uploaded image or PDF.
// @Summary      Analyze upload
// @Description  Reads the text layer of a PDF, or runs OCR on an image, and analyses the text.
// @Tags         analyze
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image or PDF"
// @Param        mode formData string false "fast or smart"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Missing or empty file"
// @Failure      413 {string} string "File too large"
// @Failure      415 {string} string "Unsupported file type"
// @Failure      422 {string} string "No text found"
// @Failure      503 {string} string "Text recognition unavailable"
// @Router       /v1/analyze/image [post]
func (h ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithRequestID(r.Context(), h.Logger)
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, logger, err)
			return
		}
		respond.Public(w, http.StatusBadRequest, "file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	mode, err := entity.ParseMode(r.FormValue("mode"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	var src io.Reader = file
	if h.MaxUploadBytes > 0 {
		// One byte past the limit is enough for the use case to reject it.
		src = io.LimitReader(file, h.MaxUploadBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	a, err := h.Svc.AnalyzeImage(r.Context(), analysisUC.ImageInput{
		Data:     data,
		Filename: header.Filename,
		Mode:     mode,
	})
	if err != nil {
		writeError(w, logger.With(slog.String("filename", header.Filename)), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}

type LiteraryHandler struct {
	Svc    Analyzer
	Logger *slog.Logger
}

// ServeHTTP annotates a text with literary insights.
// @Summary      Literary analysis
// @Description  Detects movement, influences and aesthetic styles and writes short and medium summaries. Texts need at least 200 characters.
// @Tags         analyze
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body LiteraryRequest true "Text, output language and summary length"
// @Success      200 {object} LiteraryResponse
// @Failure      400 {string} string "Text too short or invalid option"
// @Failure      422 {string} string "Text is empty"
// @Failure      429 {string} string "Too many requests"
// @Router       /v1/analyze/literary [post]
func (h LiteraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LiteraryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lang, err := entity.ParseLanguage(req.Language)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	length, err := entity.ParseSummaryLength(req.SummaryLength)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.Svc.AnalyzeLiterary(r.Context(), analysisUC.LiteraryInput{
		Text:          req.Text,
		Language:      lang,
		SummaryLength: length,
	})
	if err != nil {
		writeError(w, logging.WithRequestID(r.Context(), h.Logger), err)
		return
	}
	respond.JSON(w, http.StatusOK, LiteraryResponse{
		AnalysisID: a.ID,
		CreatedAt:  a.CreatedAt,
		SourceType: a.SourceType,
		Language:   lang,
		Insights:   a.Result.Literary,
	})
}
