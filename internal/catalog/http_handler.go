package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"booknook/internal/httpx"
	"booknook/internal/pagination"
)

type HTTPHandler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHTTPHandler(svc *Service, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{svc: svc, logger: logger}
}

// Search handles GET /v1/search-books
// @Summary Search an external book catalog
// @Description Query Google Books or OpenLibrary and return one normalized page
// @Tags catalog
// @Produce json
// @Param query query string true "Search text"
// @Param dataSource query string true "googleBooks or openLibrary"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(10)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 405 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/search-books [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, r, http.MethodGet)
		return
	}

	q := r.URL.Query()
	source, err := ParseSource(q.Get("dataSource"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_SOURCE", "Invalid data source", []httpx.ErrorDetail{
			{Field: "dataSource", Message: "dataSource must be one of: googleBooks, openLibrary"},
		})
		return
	}

	page, pageSize := pagination.Normalize(
		httpx.QueryInt(r, "page", 1),
		httpx.QueryInt(r, "pageSize", DefaultPageSize),
		DefaultPageSize, MaxPageSize,
	)

	res, err := h.svc.Search(r.Context(), q.Get("query"), source, page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	totalPages := pagination.TotalPages(res.TotalItems, pageSize)
	httpx.JSONSuccess(w, r, res, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
		"page_window": pagination.VisiblePageWindow(page, totalPages, pagination.DefaultMaxVisible),
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var upstreamErr *UpstreamError
	var malformedErr *MalformedResponseError

	switch {
	case errors.Is(err, ErrInvalidSource):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_SOURCE", "Invalid data source", nil)
	case errors.Is(err, ErrEmptyQuery):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "query", Message: "query is required"},
		})
	case errors.As(err, &upstreamErr), errors.As(err, &malformedErr):
		h.logger.ErrorContext(r.Context(), "catalog search failed", "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "UPSTREAM_ERROR", "Error searching books", nil)
	default:
		httpx.InternalError(w, r, err)
	}
}
