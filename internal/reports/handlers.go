package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
)

// Handler exposes the report endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleDaily handles GET /v1/reports/daily.
func (h *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	format := r.URL.Query().Get("format")

	report, err := h.service.Daily(r.Context(), date, format)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			h.sendError(w, http.StatusNotFound, "profile_not_found", "Create a profile before requesting reports")
		case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidFormat):
			h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			log.Printf("ERROR reports: daily report: %v", err)
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to generate report")
		}
		return
	}

	filename := fmt.Sprintf("daily-%s.%s", report.Date, report.Format)
	w.Header().Set("Content-Type", report.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Data)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
