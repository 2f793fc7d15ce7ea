package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkotl/macrolog/internal/config"
)

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/v1/profile", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS_PreflightAllowedOrigin(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.macrolog.dev"}}

	handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the inner handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, corsRequest(http.MethodOptions, "https://app.macrolog.dev"))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.macrolog.dev" {
		t.Errorf("Allow-Origin = %q, want the request origin", got)
	}
	if rr.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight response is missing Allow-Methods")
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Max-Age = %q, want 600", got)
	}
}

func TestCORS_PreflightUnknownOrigin(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.macrolog.dev"}}

	handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the inner handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, corsRequest(http.MethodOptions, "https://evil.example"))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin got Allow-Origin %q, want none", got)
	}
}

func TestCORS_SimpleRequests(t *testing.T) {
	cases := []struct {
		name            string
		origin          string
		wantAllowOrigin string
	}{
		{name: "AllowedOrigin", origin: "https://app.macrolog.dev", wantAllowOrigin: "https://app.macrolog.dev"},
		{name: "UnknownOrigin", origin: "https://evil.example", wantAllowOrigin: ""},
		{name: "NoOrigin", origin: "", wantAllowOrigin: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.macrolog.dev"}}

			innerCalled := false
			handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				innerCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, corsRequest(http.MethodGet, tc.origin))

			if !innerCalled {
				t.Fatal("simple request must reach the inner handler")
			}
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllowOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tc.wantAllowOrigin)
			}
		})
	}
}

func TestCORS_CredentialsFlag(t *testing.T) {
	cfg := &config.Config{
		CORSAllowedOrigins:   []string{"https://app.macrolog.dev"},
		CORSAllowCredentials: true,
	}

	handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, corsRequest(http.MethodGet, "https://app.macrolog.dev"))

	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
}

func TestCORS_WildcardEchoesOrigin(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"*"}}

	handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, corsRequest(http.MethodGet, "https://anything.example"))

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://anything.example" {
		t.Errorf("Allow-Origin = %q, want the request origin echoed, not a literal *", got)
	}
}
