// internal/reports/handler.go
package reports

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"biblioteka/internal/httpapi"
)

type Handler struct {
	service         Service
	defaultFineRate float64
}

func NewHandler(service Service, defaultFineRate float64) *Handler {
	return &Handler{service: service, defaultFineRate: defaultFineRate}
}

// HandleOverdue serves GET /api/reports/overdue?finePerDay=<number>. The
// configured default rate applies when the parameter is omitted.
func (h *Handler) HandleOverdue(w http.ResponseWriter, r *http.Request) {
	finePerDay := h.defaultFineRate
	if raw := r.URL.Query().Get("finePerDay"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpapi.Error(w, http.StatusBadRequest, "finePerDay must be a number")
			return
		}
		finePerDay = parsed
	}

	entries, err := h.service.ComputeOverdue(r.Context(), finePerDay, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrNegativeFineRate) {
			httpapi.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httpapi.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpapi.JSON(w, http.StatusOK, entries)
}
