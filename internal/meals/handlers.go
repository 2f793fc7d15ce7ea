package meals

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Handler exposes the meal log endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreate handles POST /v1/meals
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req MealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	meal, err := h.service.Create(r.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to create meal")
		}
		return
	}

	h.sendJSON(w, http.StatusCreated, meal)
}

// HandleList handles GET /v1/meals?date=YYYY-MM-DD
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	resp, err := h.service.ListDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to list meals")
		}
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /v1/meals/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}

	meal, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "meal_not_found", "Meal not found")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load meal")
		return
	}

	h.sendJSON(w, http.StatusOK, meal)
}

// HandleUpdate handles PUT /v1/meals/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}

	var req MealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	meal, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case isValidationError(err):
			h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, ErrNotFound):
			h.sendError(w, http.StatusNotFound, "meal_not_found", "Meal not found")
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to update meal")
		}
		return
	}

	h.sendJSON(w, http.StatusOK, meal)
}

// HandleDelete handles DELETE /v1/meals/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "meal_not_found", "Meal not found")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to delete meal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAnalyze handles POST /v1/meals/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req AnalyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.AnalyzeText(r.Context(), req)
	if err != nil {
		h.sendAnalyzeError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleAnalyzePhoto handles POST /v1/meals/analyze-photo
func (h *Handler) HandleAnalyzePhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req AnalyzePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.AnalyzePhoto(r.Context(), req)
	if err != nil {
		h.sendAnalyzeError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) sendAnalyzeError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrAnalysisFailed):
		h.sendError(w, http.StatusBadGateway, "analysis_failed", "Could not analyze the meal, please try again or enter it manually")
	default:
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to analyze meal")
	}
}

func (h *Handler) mealID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		h.sendError(w, http.StatusBadRequest, "missing_id", "meal id is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_id", "invalid meal id format")
		return uuid.Nil, false
	}
	return id, true
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyAnalyzeInput) ||
		errors.Is(err, ErrInvalidImage) ||
		errors.Is(err, ErrImageTooLarge) ||
		errors.Is(err, ErrUnsupportedImage)
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
