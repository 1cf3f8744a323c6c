// internal/membership/handler.go
package membership

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

// HandleRegister serves POST /api/members.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	member, err := h.service.RegisterMember(r.Context(), req.Name, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpapi.JSON(w, http.StatusCreated, member)
}

// HandleGetMember serves GET /api/members/{id}.
func (h *Handler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := h.service.GetMember(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpapi.JSON(w, http.StatusOK, member)
}

// HandleListMembers serves GET /api/members.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if members == nil {
		members = []Member{}
	}
	httpapi.JSON(w, http.StatusOK, members)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrMemberNotFound):
		httpapi.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrEmailTaken):
		httpapi.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidMember):
		httpapi.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRateLimited):
		httpapi.Error(w, http.StatusTooManyRequests, err.Error())
	default:
		httpapi.Error(w, http.StatusInternalServerError, "internal error")
	}
}
