package intakes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/storage/memory"
)

func newTestHandler(servingMl int) *Handler {
	store := memory.New()
	service := NewService(store, &config.Config{WaterServingMl: servingMl})
	return NewHandler(service)
}

func increment(t *testing.T, handler *Handler) WaterResponse {
	t.Helper()

	w := httptest.NewRecorder()
	handler.HandleIncrement(w, httptest.NewRequest(http.MethodPost, "/v1/water/increment", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp WaterResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleGet_ImplicitZero(t *testing.T) {
	handler := newTestHandler(250)

	w := httptest.NewRecorder()
	handler.HandleGet(w, httptest.NewRequest(http.MethodGet, "/v1/water", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp WaterResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 0 || resp.Liters != 0 {
		t.Errorf("expected implicit zero counter, got %+v", resp)
	}
	if resp.Date != time.Now().Format("2006-01-02") {
		t.Errorf("expected today's date, got %s", resp.Date)
	}
}

func TestHandleIncrement(t *testing.T) {
	handler := newTestHandler(250)

	var resp WaterResponse
	for i := 0; i < 3; i++ {
		resp = increment(t, handler)
	}

	if resp.Count != 3 {
		t.Errorf("expected count 3, got %d", resp.Count)
	}
	if resp.Liters != 0.75 {
		t.Errorf("expected 0.75 liters, got %v", resp.Liters)
	}
}

func TestHandleDecrement(t *testing.T) {
	handler := newTestHandler(250)

	increment(t, handler)
	increment(t, handler)

	w := httptest.NewRecorder()
	handler.HandleDecrement(w, httptest.NewRequest(http.MethodPost, "/v1/water/decrement", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp WaterResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("expected count 1 after decrement, got %d", resp.Count)
	}
}

func TestHandleDecrement_FloorsAtZero(t *testing.T) {
	handler := newTestHandler(250)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.HandleDecrement(w, httptest.NewRequest(http.MethodPost, "/v1/water/decrement", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var resp WaterResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Count != 0 {
			t.Errorf("decrement below zero produced count %d", resp.Count)
		}
	}
}

func TestHandleGet_ReadsBackCounter(t *testing.T) {
	handler := newTestHandler(250)

	increment(t, handler)
	increment(t, handler)

	w := httptest.NewRecorder()
	handler.HandleGet(w, httptest.NewRequest(http.MethodGet, "/v1/water", nil))

	var resp WaterResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || resp.Liters != 0.5 {
		t.Errorf("expected 2 servings / 0.5 L, got %+v", resp)
	}
}

func TestHandleGet_ExplicitDateIsIndependent(t *testing.T) {
	handler := newTestHandler(250)

	increment(t, handler)

	w := httptest.NewRecorder()
	handler.HandleGet(w, httptest.NewRequest(http.MethodGet, "/v1/water?date=2020-01-01", nil))

	var resp WaterResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Date != "2020-01-01" || resp.Count != 0 {
		t.Errorf("expected empty counter for another day, got %+v", resp)
	}
}

func TestHandleGet_InvalidDate(t *testing.T) {
	handler := newTestHandler(250)

	w := httptest.NewRecorder()
	handler.HandleGet(w, httptest.NewRequest(http.MethodGet, "/v1/water?date=01.01.2020", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Error.Code != "validation_error" {
		t.Errorf("expected validation_error, got %s", resp.Error.Code)
	}
}

func TestLitersFollowServingSize(t *testing.T) {
	handler := newTestHandler(500)

	increment(t, handler)
	resp := increment(t, handler)

	if resp.Liters != 1.0 {
		t.Errorf("expected 1.0 liters with 500 ml servings, got %v", resp.Liters)
	}
}
