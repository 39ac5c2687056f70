package book

import (
	"errors"
	"net/http"
	"strings"

	"booknook/internal/httpx"
	"booknook/internal/pagination"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return "", false
	}
	return userID, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return Input{}, false
	}
	if details := httpx.ValidateStruct(in); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return Input{}, false
	}
	return in, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}
	httpx.InternalError(w, r, err)
}

// List handles GET /v1/books
// @Summary List my books
// @Tags books
// @Produce json
// @Security Bearer
// @Param status query string false "NOT_STARTED, READING or FINISHED"
// @Param sort query string false "created_at, updated_at, title or rating"
// @Param desc query bool false "Sort descending"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	q := Query{
		UserID: userID,
		Sort:   ParseSort(query.Get("sort")),
		Desc:   strings.EqualFold(query.Get("desc"), "true"),
	}
	if raw := query.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "status", Message: "status must be one of: NOT_STARTED, READING, FINISHED"},
			})
			return
		}
		q.Status = status
	}

	page, pageSize := pagination.Normalize(
		httpx.QueryInt(r, "page", 1),
		httpx.QueryInt(r, "page_size", defaultPageSize),
		defaultPageSize, maxPageSize,
	)
	q.Limit = pageSize
	q.Offset = pagination.Offset(page, pageSize)

	books, total, err := h.service.List(r.Context(), q)
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": pagination.TotalPages(total, pageSize),
	})
}

// Create handles POST /v1/books
// @Summary Add a book to my collection
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body Input true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	b, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

// Get handles GET /v1/books/{id}
// @Summary Get one of my books
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Update handles PUT /v1/books/{id}
// @Summary Replace one of my books
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body Input true "Book"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	b, err := h.service.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /v1/books/{id}
// @Summary Remove one of my books
// @Tags books
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
