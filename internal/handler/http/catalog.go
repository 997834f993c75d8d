package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LQT2201/Book-UIT/internal/catalog"
	"github.com/LQT2201/Book-UIT/pkg/httputil"
)

// CatalogHandler handles HTTP requests for public catalog endpoints.
type CatalogHandler struct {
	service *catalog.Service
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *catalog.Service, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// ListBooks handles GET /api/v1/books. An optional genre query parameter
// filters by genre name.
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context(), r.URL.Query().Get("genre"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if books == nil {
		books = []catalog.Book{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: books})
}

// SearchBooks handles GET /api/v1/books/search. Keyword, repeated genre,
// sort, and by query parameters pass through to the backend search.
func (h *CatalogHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := catalog.SearchQuery{
		Keyword: params.Get("keyword"),
		Genres:  params["genre"],
		Sort:    params.Get("sort"),
		By:      params.Get("by"),
	}

	books, err := h.service.SearchBooks(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if books == nil {
		books = []catalog.Book{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: books})
}

// GetBook handles GET /api/v1/books/{bookId}
func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBook(r.Context(), chi.URLParam(r, "bookId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// ListGenres handles GET /api/v1/genres
func (h *CatalogHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.ListGenres(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if genres == nil {
		genres = []catalog.Genre{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: genres})
}
