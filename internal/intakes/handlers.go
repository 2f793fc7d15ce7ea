package intakes

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler exposes the water counter endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/water?date=YYYY-MM-DD
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	resp, err := h.service.Get(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load water log")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleIncrement handles POST /v1/water/increment
func (h *Handler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	resp, err := h.service.Increment(r.Context())
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to update water count")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleDecrement handles POST /v1/water/decrement
func (h *Handler) HandleDecrement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	resp, err := h.service.Decrement(r.Context())
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to update water count")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// sendJSON writes a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError writes an ErrorResponse envelope
func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
