// internal/lending/handler.go
package lending

import (
	"errors"
	"net/http"

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

// HandleBorrow serves POST /api/loans/borrow.
func (h *Handler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"member_id"`
		BookID   string `json:"book_id"`
		Days     int    `json:"days"`
	}
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		httpapi.Error(w, http.StatusBadRequest, "invalid member_id")
		return
	}
	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		httpapi.Error(w, http.StatusBadRequest, "invalid book_id")
		return
	}

	loan, err := h.service.Borrow(r.Context(), memberID, bookID, req.Days)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpapi.JSON(w, http.StatusCreated, loan)
}

// HandleReturn serves POST /api/loans/return.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoanID string `json:"loan_id"`
	}
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	loanID, err := uuid.Parse(req.LoanID)
	if err != nil {
		httpapi.Error(w, http.StatusBadRequest, "invalid loan_id")
		return
	}

	loan, err := h.service.Return(r.Context(), loanID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpapi.JSON(w, http.StatusOK, loan)
}

// HandleListLoans serves GET /api/loans.
func (h *Handler) HandleListLoans(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ListLoans(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if details == nil {
		details = []LoanDetail{}
	}
	httpapi.JSON(w, http.StatusOK, details)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrBookNotFound),
		errors.Is(err, storage.ErrMemberNotFound),
		errors.Is(err, storage.ErrLoanNotFound):
		httpapi.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrNoCopiesAvailable),
		errors.Is(err, storage.ErrAlreadyReturned):
		httpapi.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidDuration):
		httpapi.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnavailable):
		httpapi.Error(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
	default:
		httpapi.Error(w, http.StatusInternalServerError, "internal error")
	}
}
