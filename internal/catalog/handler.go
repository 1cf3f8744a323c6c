// internal/catalog/handler.go
package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"biblioteka/internal/httpapi"
	"biblioteka/internal/storage"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleAddBook serves POST /api/books.
func (h *Handler) HandleAddBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		Copies int    `json:"copies"`
	}
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.service.AddBook(r.Context(), req.Title, req.Author, req.Copies)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpapi.JSON(w, http.StatusCreated, book)
}

// HandleGetBook serves GET /api/books/{id}.
func (h *Handler) HandleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.Error(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpapi.JSON(w, http.StatusOK, book)
}

// HandleListBooks serves GET /api/books.
func (h *Handler) HandleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	httpapi.JSON(w, http.StatusOK, books)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrBookNotFound):
		httpapi.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidBook), errors.Is(err, ErrInvalidCopies):
		httpapi.Error(w, http.StatusBadRequest, err.Error())
	default:
		httpapi.Error(w, http.StatusInternalServerError, "internal error")
	}
}
