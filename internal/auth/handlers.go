package auth

import (
	"encoding/json"
	"net/http"

	"github.com/dkotl/macrolog/internal/config"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleAnonymousSignIn handles POST /v1/auth/anonymous
func (h *Handlers) HandleAnonymousSignIn(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.SignInAnonymous()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	sendJSONResponse(w, http.StatusOK, resp)
}

// HandleSession handles GET /v1/auth/session
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		// Open mode has a single implicit identity; report it so clients
		// can show a session without signing in.
		if h.service.config.AuthMode == config.AuthModeNone {
			sendJSONResponse(w, http.StatusOK, SessionResponse{UserID: "default"})
			return
		}
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
		return
	}

	session, err := h.service.SessionInfo(token)
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
		return
	}

	sendJSONResponse(w, http.StatusOK, session)
}

func sendJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	sendJSONResponse(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
