package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkotl/macrolog/internal/config"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:              8080,
		AuthMode:          "none",
		AIMode:            "mock",
		WaterServingMl:    250,
		UploadMaxMB:       8,
		UploadAllowedMime: "image/jpeg,image/png,image/heic",
		Blob:              config.BlobConfig{Mode: "local", LocalDir: t.TempDir()},
	}
}

func TestHealthz(t *testing.T) {
	srv := New(newTestConfig(t))
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := New(newTestConfig(t))
	defer srv.Close()

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// do runs one request through the full route table.
func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	return w
}

func TestRoutes_FullDay(t *testing.T) {
	srv := New(newTestConfig(t))
	defer srv.Close()

	// No profile yet
	if w := do(t, srv, http.MethodGet, "/v1/profile", ""); w.Code != http.StatusNotFound {
		t.Fatalf("GET /v1/profile before create: expected 404, got %d", w.Code)
	}

	// Create the profile
	w := do(t, srv, http.MethodPut, "/v1/profile",
		`{"height_cm":180,"weight_kg":82,"age_years":29,"gender":"male","activity_level":"moderate","goal":"maintain"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /v1/profile: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var profile struct {
		Targets struct {
			CaloriesKcal int `json:"calories_kcal"`
		} `json:"targets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Targets.CaloriesKcal != 2035 {
		t.Errorf("expected 2035 kcal target, got %d", profile.Targets.CaloriesKcal)
	}

	// Log a meal
	w = do(t, srv, http.MethodPost, "/v1/meals",
		`{"name":"Omelette","calories_kcal":350,"carbs_g":4,"protein_g":24,"fat_g":26}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /v1/meals: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Today's list includes it in the totals
	w = do(t, srv, http.MethodGet, "/v1/meals", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/meals: expected 200, got %d", w.Code)
	}
	var day struct {
		Meals  []json.RawMessage `json:"meals"`
		Totals struct {
			CaloriesKcal float64 `json:"calories_kcal"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &day); err != nil {
		t.Fatalf("decode meals: %v", err)
	}
	if len(day.Meals) != 1 || day.Totals.CaloriesKcal != 350 {
		t.Errorf("expected 1 meal totaling 350 kcal, got %d meals / %v kcal", len(day.Meals), day.Totals.CaloriesKcal)
	}

	// Water up and read back
	if w := do(t, srv, http.MethodPost, "/v1/water/increment", ""); w.Code != http.StatusOK {
		t.Fatalf("POST /v1/water/increment: expected 200, got %d", w.Code)
	}
	w = do(t, srv, http.MethodGet, "/v1/water", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/water: expected 200, got %d", w.Code)
	}
	var water struct {
		Count  int     `json:"count"`
		Liters float64 `json:"liters"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &water); err != nil {
		t.Fatalf("decode water: %v", err)
	}
	if water.Count != 1 || water.Liters != 0.25 {
		t.Errorf("expected count=1 liters=0.25, got %+v", water)
	}

	// Daily report renders
	w = do(t, srv, http.MethodGet, "/v1/reports/daily", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/reports/daily: expected 200, got %d", w.Code)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("report body does not start with the PDF magic")
	}

	// Wipe the account
	if w := do(t, srv, http.MethodDelete, "/v1/account", ""); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /v1/account: expected 204, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/v1/profile", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET /v1/profile after wipe: expected 404, got %d", w.Code)
	}
	w = do(t, srv, http.MethodGet, "/v1/meals", "")
	if err := json.Unmarshal(w.Body.Bytes(), &day); err != nil {
		t.Fatalf("decode meals after wipe: %v", err)
	}
	if len(day.Meals) != 0 {
		t.Errorf("expected no meals after wipe, got %d", len(day.Meals))
	}
}

func TestPhotoRoute(t *testing.T) {
	srv := New(newTestConfig(t))
	defer srv.Close()

	pngHeader := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	if _, err := srv.photoStore.PutObject(context.Background(), "photos/default/test.png", pngHeader, "image/png"); err != nil {
		t.Fatalf("put object: %v", err)
	}

	w := do(t, srv, http.MethodGet, "/v1/photos/default/test.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}

	// Foreign namespace is invisible, not forbidden
	if _, err := srv.photoStore.PutObject(context.Background(), "photos/someone-else/test.png", pngHeader, "image/png"); err != nil {
		t.Fatalf("put object: %v", err)
	}
	if w := do(t, srv, http.MethodGet, "/v1/photos/someone-else/test.png", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a foreign photo, got %d", w.Code)
	}
}

func TestSyncToday_PushesSnapshots(t *testing.T) {
	srv := New(newTestConfig(t))
	defer srv.Close()

	ts := httptest.NewServer(srv.mux)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sync/today"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	readSnapshot := func() map[string]json.RawMessage {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read snapshot: %v", err)
		}
		var snapshot map[string]json.RawMessage
		if err := json.Unmarshal(data, &snapshot); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		return snapshot
	}

	// Initial snapshot arrives on connect, profile still null
	snapshot := readSnapshot()
	for _, key := range []string{"profile", "meals", "water"} {
		if _, ok := snapshot[key]; !ok {
			t.Fatalf("initial snapshot missing %q: %v", key, snapshot)
		}
	}
	if string(snapshot["profile"]) != "null" {
		t.Errorf("expected null profile in initial snapshot, got %s", snapshot["profile"])
	}

	// A mutation pushes a fresh snapshot reflecting the write
	resp, err := http.Post(ts.URL+"/v1/water/increment", "application/json", nil)
	if err != nil {
		t.Fatalf("increment water: %v", err)
	}
	resp.Body.Close()

	snapshot = readSnapshot()
	var water struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(snapshot["water"], &water); err != nil {
		t.Fatalf("decode water from snapshot: %v", err)
	}
	if water.Count != 1 {
		t.Errorf("expected water count 1 in pushed snapshot, got %d", water.Count)
	}
}
