package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase  string
	token    string
	client   = &http.Client{Timeout: 30 * time.Second}
	mealID   string
	mealsCnt int
)

func main() {
	fmt.Println("=== Macrolog E2E Smoke Test ===")
	fmt.Println()

	// Load config from env
	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	token = getEnv("SMOKE_TOKEN", "")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Println()

	// Run smoke tests
	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Anonymous Sign-In", testAnonymousSignIn},
		{"Upsert Profile", testUpsertProfile},
		{"Get Targets", testGetTargets},
		{"Create Meal", testCreateMeal},
		{"List Meals", testListMeals},
		{"Update Meal", testUpdateMeal},
		{"Analyze Text", testAnalyzeText},
		{"Water Counter", testWaterCounter},
		{"Daily Report (PDF)", testDailyReport},
		{"Delete Meal", testDeleteMeal},
		{"Wipe Account", testWipeAccount},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := doRequest("GET", "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

// testAnonymousSignIn obtains a fresh throwaway user unless SMOKE_TOKEN is
// provided. The account is wiped at the end either way.
func testAnonymousSignIn() error {
	if token != "" {
		return nil
	}

	resp, err := doRequest("POST", "/v1/auth/anonymous", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.AccessToken == "" {
		// AUTH_MODE=none deployments run as the fixed default user
		return nil
	}

	token = result.AccessToken
	return nil
}

func testUpsertProfile() error {
	payload := map[string]interface{}{
		"height_cm":      180,
		"weight_kg":      82,
		"age_years":      29,
		"gender":         "male",
		"activity_level": "moderate",
		"goal":           "maintain",
	}

	resp, err := doJSON("PUT", "/v1/profile", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Targets struct {
			CaloriesKcal int `json:"calories_kcal"`
		} `json:"targets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Targets.CaloriesKcal <= 0 {
		return fmt.Errorf("expected positive calorie target, got %d", result.Targets.CaloriesKcal)
	}

	return nil
}

func testGetTargets() error {
	resp, err := doRequest("GET", "/v1/targets", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testCreateMeal() error {
	payload := map[string]interface{}{
		"name":          "Smoke test meal",
		"calories_kcal": 420,
		"carbs_g":       38,
		"protein_g":     32,
		"fat_g":         14,
	}

	resp, err := doJSON("POST", "/v1/meals", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.ID == "" {
		return fmt.Errorf("no meal id in response")
	}

	mealID = result.ID
	return nil
}

func testListMeals() error {
	resp, err := doRequest("GET", "/v1/meals", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Meals  []struct{ ID string } `json:"meals"`
		Totals struct {
			CaloriesKcal float64 `json:"calories_kcal"`
		} `json:"totals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if len(result.Meals) == 0 {
		return fmt.Errorf("expected at least one meal today")
	}
	if result.Totals.CaloriesKcal <= 0 {
		return fmt.Errorf("expected positive consumed calories, got %v", result.Totals.CaloriesKcal)
	}

	mealsCnt = len(result.Meals)
	return nil
}

func testUpdateMeal() error {
	payload := map[string]interface{}{
		"name":          "Smoke test meal (edited)",
		"calories_kcal": 444,
		"carbs_g":       40,
		"protein_g":     33,
		"fat_g":         15,
	}

	resp, err := doJSON("PUT", "/v1/meals/"+mealID, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

// testAnalyzeText also verifies that analysis never writes to the log.
func testAnalyzeText() error {
	payload := map[string]interface{}{"text": "two scrambled eggs with toast"}

	resp, err := doJSON("POST", "/v1/meals/analyze", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Estimate struct {
			Name string `json:"name"`
		} `json:"estimate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Estimate.Name == "" {
		return fmt.Errorf("empty estimate name")
	}

	// The estimate must not have been committed
	listResp, err := doRequest("GET", "/v1/meals", nil)
	if err != nil {
		return err
	}
	defer listResp.Body.Close()

	var day struct {
		Meals []struct{ ID string } `json:"meals"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&day); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if len(day.Meals) != mealsCnt {
		return fmt.Errorf("analyze committed a meal: %d -> %d", mealsCnt, len(day.Meals))
	}

	return nil
}

func testWaterCounter() error {
	for i := 0; i < 2; i++ {
		resp, err := doRequest("POST", "/v1/water/increment", nil)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("increment %d: status=%d", i+1, resp.StatusCode)
		}
	}

	resp, err := doRequest("POST", "/v1/water/decrement", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("decrement: status=%d", resp.StatusCode)
	}

	getResp, err := doRequest("GET", "/v1/water", nil)
	if err != nil {
		return err
	}
	defer getResp.Body.Close()

	if err := expectStatus(getResp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Count  int     `json:"count"`
		Liters float64 `json:"liters"`
	}
	if err := json.NewDecoder(getResp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Count < 1 {
		return fmt.Errorf("expected count >= 1 after +2/-1, got %d", result.Count)
	}

	return nil
}

func testDailyReport() error {
	resp, err := doRequest("GET", "/v1/reports/daily", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		return fmt.Errorf("expected application/pdf, got %s", ct)
	}

	magic := make([]byte, 5)
	if _, err := io.ReadFull(resp.Body, magic); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if string(magic) != "%PDF-" {
		return fmt.Errorf("body does not start with PDF magic: %q", magic)
	}

	return nil
}

func testDeleteMeal() error {
	resp, err := doRequest("DELETE", "/v1/meals/"+mealID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusNoContent)
}

func testWipeAccount() error {
	resp, err := doRequest("DELETE", "/v1/account", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("wipe: status=%d", resp.StatusCode)
	}

	// Everything must be gone
	profileResp, err := doRequest("GET", "/v1/profile", nil)
	if err != nil {
		return err
	}
	profileResp.Body.Close()
	if profileResp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("profile survived the wipe: status=%d", profileResp.StatusCode)
	}

	return nil
}

// ---- helpers ----

func doRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	addAuth(req)
	return client.Do(req)
}

func doJSON(method, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, apiBase+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	addAuth(req)
	return client.Do(req)
}

func expectStatus(resp *http.Response, want int) error {
	if resp.StatusCode != want {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

func addAuth(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
