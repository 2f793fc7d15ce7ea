package config

import (
	"reflect"
	"testing"
)

// clearModeEnv pins every mode-like variable to empty so Load exercises
// its defaults regardless of the ambient environment.
func clearModeEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "ENV", "PORT", "LOG_LEVEL",
		"AUTH_MODE", "AI_MODE", "BLOB_MODE",
		"JWT_SECRET", "JWT_TTL_MINUTES", "OPENAI_API_KEY",
		"WATER_SERVING_ML", "UPLOAD_MAX_MB",
		"DATABASE_URL", "DATABASE_URL_POOLED", "DATABASE_URL_DIRECT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearModeEnv(t)

	cfg := Load()

	if cfg.Env != "local" {
		t.Errorf("Env = %q, want local", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.AuthMode != AuthModeNone {
		t.Errorf("AuthMode = %q, want none", cfg.AuthMode)
	}
	if cfg.AIMode != AIModeMock {
		t.Errorf("AIMode = %q, want mock", cfg.AIMode)
	}
	if cfg.Blob.Mode != BlobModeLocal {
		t.Errorf("Blob.Mode = %q, want local", cfg.Blob.Mode)
	}
	if cfg.WaterServingMl != 250 {
		t.Errorf("WaterServingMl = %d, want 250", cfg.WaterServingMl)
	}
	if cfg.UploadMaxMB != 8 {
		t.Errorf("UploadMaxMB = %d, want 8", cfg.UploadMaxMB)
	}
	if cfg.JWTTTLMinutes != 525600 {
		t.Errorf("JWTTTLMinutes = %d, want 525600", cfg.JWTTTLMinutes)
	}
}

func TestLoadUnknownModesFallBack(t *testing.T) {
	clearModeEnv(t)
	t.Setenv("AUTH_MODE", "basic")
	t.Setenv("AI_MODE", "bard")
	t.Setenv("BLOB_MODE", "ftp")

	cfg := Load()

	if cfg.AuthMode != AuthModeNone {
		t.Errorf("AuthMode = %q, want fallback none", cfg.AuthMode)
	}
	if cfg.AIMode != AIModeMock {
		t.Errorf("AIMode = %q, want fallback mock", cfg.AIMode)
	}
	if cfg.Blob.Mode != BlobModeLocal {
		t.Errorf("Blob.Mode = %q, want fallback local", cfg.Blob.Mode)
	}
}

func TestLoadDatabasePriority(t *testing.T) {
	cases := []struct {
		name    string
		pooled  string
		url     string
		direct  string
		wantURL string
	}{
		{name: "PooledWins", pooled: "postgres://pooled", url: "postgres://url", direct: "postgres://direct", wantURL: "postgres://pooled"},
		{name: "URLWhenNoPooler", url: "postgres://url", direct: "postgres://direct", wantURL: "postgres://url"},
		{name: "DirectAsLastResort", direct: "postgres://direct", wantURL: "postgres://direct"},
		{name: "NothingConfigured", wantURL: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL_POOLED", tc.pooled)
			t.Setenv("DATABASE_URL", tc.url)
			t.Setenv("DATABASE_URL_DIRECT", tc.direct)

			cfg := &Config{}
			loadDatabase(cfg)

			if cfg.DatabaseURL != tc.wantURL {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.wantURL)
			}
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	if got := corsOrigins("", "local"); !reflect.DeepEqual(got, []string{"http://localhost:3000", "http://localhost:8081"}) {
		t.Errorf("local default origins = %v", got)
	}
	if got := corsOrigins("", "prod"); got != nil {
		t.Errorf("prod with no origins = %v, want nil", got)
	}

	got := corsOrigins(" https://a.example , ,https://b.example ", "prod")
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsed origins = %v, want %v", got, want)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MACROLOG_TEST_INT", "42")
	if got := envInt("MACROLOG_TEST_INT", 7); got != 42 {
		t.Errorf("envInt = %d, want 42", got)
	}
	t.Setenv("MACROLOG_TEST_INT", "not-a-number")
	if got := envInt("MACROLOG_TEST_INT", 7); got != 7 {
		t.Errorf("envInt on garbage = %d, want fallback 7", got)
	}

	t.Setenv("MACROLOG_TEST_POS", "-5")
	if got := positiveEnvInt("MACROLOG_TEST_POS", 250); got != 250 {
		t.Errorf("positiveEnvInt on negative = %d, want fallback 250", got)
	}

	for raw, want := range map[string]bool{"1": true, "true": true, "YES": true, "on": true, "0": false, "off": false, "": false} {
		t.Setenv("MACROLOG_TEST_BOOL", raw)
		if got := envBool("MACROLOG_TEST_BOOL"); got != want {
			t.Errorf("envBool(%q) = %t, want %t", raw, got, want)
		}
	}

	if got := clampFloat(3.5, 0, 2); got != 2 {
		t.Errorf("clampFloat above range = %v, want 2", got)
	}
	if got := clampFloat(-1, 0, 2); got != 0 {
		t.Errorf("clampFloat below range = %v, want 0", got)
	}
}
