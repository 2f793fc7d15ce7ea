package httpserver

import (
	"net/http"
	"strings"

	"github.com/dkotl/macrolog/internal/config"
)

const (
	corsAllowMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsAllowHeaders = "Authorization,Content-Type"
	corsMaxAge       = "600"
)

// CORSMiddleware enforces the configured browser origin allow-list.
// Requests without an Origin header (native clients, curl) pass through
// untouched. An entry of "*" allows any origin; the origin is echoed back
// per request because the wildcard form cannot carry credentials.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	originAllowed := func(origin string) bool {
		if allowAll {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		// The response depends on Origin whenever an allow-list is active.
		w.Header().Set("Vary", "Origin")

		if !originAllowed(origin) {
			// Unknown origin: answer preflights with a bare 204 and let the
			// browser block the actual request. Non-preflight traffic still
			// reaches the handler, it just gets no CORS headers.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		if cfg.CORSAllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
