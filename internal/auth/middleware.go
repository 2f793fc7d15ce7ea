package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/dkotl/macrolog/internal/config"
)

// Middleware guards API routes with Bearer-token checks.
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{config: cfg, service: service}
}

// RequireAuth rejects requests without a valid Bearer token. Public paths
// and AUTH_MODE=none pass through untouched.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.config.AuthMode != config.AuthModeJWT || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "Unauthorized")
			return
		}

		userID, err := m.service.VerifyJWT(token)
		if err != nil {
			unauthorized(w, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// OptionalAuth honors a presented Bearer token without demanding one.
// Requests without a token pass through unchanged; a token that fails
// verification is still rejected so clients notice expired sessions.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.service.VerifyJWT(token)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		log.Printf("auth token accepted: sub=%s method=%s path=%s", userID, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter, message string) {
	writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", message)
}

// isPublicPath marks routes that must stay reachable without a session:
// the health check and the sign-in endpoints themselves.
func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/v1/auth/")
}
