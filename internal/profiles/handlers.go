package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler exposes the profile endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/profile
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	profile, err := h.service.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "profile_not_found", "Profile has not been created yet")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load profile")
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
}

// HandleUpsert handles PUT /v1/profile
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	profile, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to save profile")
		}
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
}

// HandlePatch handles PATCH /v1/profile
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req PatchProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	profile, err := h.service.Patch(r.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			h.sendError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, ErrNotFound):
			h.sendError(w, http.StatusNotFound, "profile_not_found", "Profile has not been created yet")
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to save profile")
		}
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
}

// HandleTargets handles GET /v1/targets
func (h *Handler) HandleTargets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	targets, err := h.service.Targets(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "profile_not_found", "Profile has not been created yet")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load targets")
		return
	}

	h.sendJSON(w, http.StatusOK, TargetsResponse{Targets: *targets})
}

// HandleDeleteAccount handles DELETE /v1/account
func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	if err := h.service.DeleteAccount(r.Context()); err != nil {
		h.sendError(w, http.StatusInternalServerError, "wipe_failed", "Failed to delete account data")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidHeight) ||
		errors.Is(err, ErrInvalidWeight) ||
		errors.Is(err, ErrInvalidAge) ||
		errors.Is(err, ErrEmptyGender) ||
		errors.Is(err, ErrEmptyActivityLevel) ||
		errors.Is(err, ErrEmptyGoal)
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
