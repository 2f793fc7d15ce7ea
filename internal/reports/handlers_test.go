package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/storage"
	"github.com/dkotl/macrolog/internal/storage/memory"
)

func newTestHandler() (*Handler, *memory.MemoryStorage) {
	store := memory.New()
	cfg := &config.Config{WaterServingMl: 250}
	service := NewService(store, cfg)
	return NewHandler(service), store
}

func seedProfile(t *testing.T, store *memory.MemoryStorage) {
	t.Helper()
	_, err := store.UpsertProfile(context.Background(), storage.Profile{
		UserID:        "default",
		HeightCm:      180,
		WeightKg:      82,
		AgeYears:      29,
		Gender:        "male",
		ActivityLevel: "moderate",
		Goal:          "maintain",
		CaloriesKcal:  2035,
		CarbsG:        204,
		ProteinG:      153,
		FatG:          68,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func seedMeal(t *testing.T, store *memory.MemoryStorage, name string, kcal float64, at time.Time) {
	t.Helper()
	_, err := store.CreateMeal(context.Background(), storage.Meal{
		UserID:       "default",
		Name:         name,
		CaloriesKcal: kcal,
		CarbsG:       40,
		ProteinG:     30,
		FatG:         10,
		CreatedAt:    at,
	})
	if err != nil {
		t.Fatalf("seed meal: %v", err)
	}
}

func TestHandleDaily_PDF(t *testing.T) {
	handler, store := newTestHandler()
	seedProfile(t, store)
	seedMeal(t, store, "Oatmeal with berries", 420, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/daily", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "daily-") || !strings.Contains(cd, ".pdf") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body does not start with the PDF magic")
	}
}

func TestHandleDaily_CSV(t *testing.T) {
	handler, store := newTestHandler()
	seedProfile(t, store)

	day := time.Date(2026, 8, 20, 13, 15, 0, 0, time.Local)
	seedMeal(t, store, "Chicken bowl", 650, day)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/daily?date=2026-08-20&format=csv", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) < 5 {
		t.Fatalf("expected header, meal, totals, targets and water rows, got %d rows", len(rows))
	}
	if rows[0][0] != "date" {
		t.Errorf("unexpected header row %v", rows[0])
	}

	foundMeal := false
	for _, row := range rows[1:] {
		if row[1] == "meal" && row[2] == "Chicken bowl" {
			foundMeal = true
			if row[0] != "2026-08-20" {
				t.Errorf("expected meal row dated 2026-08-20, got %q", row[0])
			}
			if row[3] != "650" {
				t.Errorf("expected 650 kcal in meal row, got %q", row[3])
			}
		}
	}
	if !foundMeal {
		t.Error("meal row missing from csv")
	}
}

func TestHandleDaily_CSVTargetsRow(t *testing.T) {
	handler, store := newTestHandler()
	seedProfile(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/daily?format=csv", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	foundTargets := false
	for _, row := range rows {
		if row[1] == "targets" {
			foundTargets = true
			if row[3] != "2035" {
				t.Errorf("expected targets row with 2035 kcal, got %q", row[3])
			}
		}
	}
	if !foundTargets {
		t.Error("targets row missing from csv")
	}
}

func TestHandleDaily_NoProfile(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/daily", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error.Code != "profile_not_found" {
		t.Errorf("expected profile_not_found, got %q", resp.Error.Code)
	}
}

func TestHandleDaily_InvalidDate(t *testing.T) {
	handler, store := newTestHandler()
	seedProfile(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/daily?date=20-08-2026", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error.Code != "validation_error" {
		t.Errorf("expected validation_error, got %q", resp.Error.Code)
	}
}

func TestHandleDaily_InvalidFormat(t *testing.T) {
	handler, store := newTestHandler()
	seedProfile(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/daily?format=xlsx", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error.Code != "validation_error" {
		t.Errorf("expected validation_error, got %q", resp.Error.Code)
	}
}

func TestHandleDaily_WaterFromCounter(t *testing.T) {
	handler, store := newTestHandler()
	seedProfile(t, store)

	today := time.Now().Format("2006-01-02")
	for i := 0; i < 3; i++ {
		if _, err := store.AddWaterCount(context.Background(), "default", today, 1); err != nil {
			t.Fatalf("seed water: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/daily?format=csv", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	foundWater := false
	for _, row := range rows {
		if row[1] == "water" {
			foundWater = true
			if row[2] != "3 servings" {
				t.Errorf("expected 3 servings in water row, got %q", row[2])
			}
		}
	}
	if !foundWater {
		t.Error("water row missing from csv")
	}
}
