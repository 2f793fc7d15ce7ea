package config

import (
	"strings"
	"testing"
)

func fullS3Config() S3Config {
	return S3Config{
		Endpoint:        "https://s3.example.com",
		Region:          "eu-central-1",
		Bucket:          "macrolog-photos",
		AccessKeyID:     "AKIA-TEST",
		SecretAccessKey: "sup3r-s3cret-value",
		PublicBaseURL:   "https://s3.example.com/macrolog-photos",
	}
}

func TestS3ConfigIsConfigured(t *testing.T) {
	if (S3Config{}).IsConfigured() {
		t.Error("empty config must not count as configured")
	}
	if !fullS3Config().IsConfigured() {
		t.Error("expected IsConfigured=true with all required fields set")
	}
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://s3.example.com",
		Bucket:   "macrolog-photos",
	}

	missing := cfg.MissingRequired()
	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PUBLIC_BASE_URL"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %v", len(want), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("missing[%d]: expected %s, got %s", i, want[i], missing[i])
		}
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	cases := []struct {
		name      string
		cfg       S3Config
		wantLevel string
		wantCode  string
	}{
		{"AllEmpty", S3Config{}, "INFO", "s3_not_configured"},
		{"Partial", S3Config{Endpoint: "https://s3.example.com"}, "WARN", "s3_partial_config"},
		{"Ready", fullS3Config(), "INFO", "s3_ready"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level, code, _ := tc.cfg.Diagnostics()
			if level != tc.wantLevel || code != tc.wantCode {
				t.Errorf("expected %s/%s, got %s/%s", tc.wantLevel, tc.wantCode, level, code)
			}
		})
	}
}

func TestS3ConfigDiagnosticsSummaryHidesSecrets(t *testing.T) {
	summary := fullS3Config().DiagnosticsSummary()

	if strings.Contains(summary, "sup3r-s3cret-value") || strings.Contains(summary, "AKIA-TEST") {
		t.Errorf("summary leaks credentials: %s", summary)
	}
	if !strings.Contains(summary, "secret_access_key=set") || !strings.Contains(summary, "access_key_id=set") {
		t.Errorf("expected credential status flags in summary, got: %s", summary)
	}
	if !strings.Contains(summary, "bucket=macrolog-photos") {
		t.Errorf("expected bucket in summary, got: %s", summary)
	}
}
