package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

const (
	AuthModeNone = "none"
	AuthModeJWT  = "jwt"
)

const (
	AIModeMock   = "mock"
	AIModeOpenAI = "openai"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

type s3Field struct {
	env   string
	value string
}

func (c S3Config) requiredFields() []s3Field {
	return []s3Field{
		{"S3_ENDPOINT", c.Endpoint},
		{"S3_REGION", c.Region},
		{"S3_BUCKET", c.Bucket},
		{"S3_ACCESS_KEY_ID", c.AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", c.SecretAccessKey},
		{"S3_PUBLIC_BASE_URL", c.PublicBaseURL},
	}
}

// MissingRequired lists the env vars still needed for a working S3 setup,
// in the order they are documented.
func (c S3Config) MissingRequired() []string {
	var missing []string
	for _, f := range c.requiredFields() {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.env)
		}
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

// Diagnostics classifies the S3 setup for startup logging: untouched,
// half-filled, or ready.
func (c S3Config) Diagnostics() (level string, code string, msg string) {
	fields := c.requiredFields()
	missing := c.MissingRequired()

	switch {
	case len(missing) == len(fields):
		return "INFO", "s3_not_configured", "not configured (all empty)"
	case len(missing) > 0:
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	default:
		return "INFO", "s3_ready", "ready"
	}
}

// DiagnosticsSummary renders the S3 setup for logs. Credentials are
// reported as set/not set, never by value.
func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		valueOrDash(c.Endpoint),
		valueOrDash(c.Region),
		valueOrDash(c.Bucket),
		valueOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		setFlag(c.AccessKeyID),
		setFlag(c.SecretAccessKey),
	)
}

func valueOrDash(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "-"
	}
	return v
}

func setFlag(secret string) string {
	if strings.TrimSpace(secret) == "" {
		return "not set"
	}
	return "set"
}

type BlobConfig struct {
	Mode     string // local|s3|auto
	LocalDir string
	S3       S3Config
}

// Config holds the application configuration.
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Blob storage (meal photos)
	Blob BlobConfig

	// Uploads
	UploadMaxMB       int
	UploadAllowedMime string

	// Water tracking
	WaterServingMl int

	// Authentication
	AuthMode      string // none | jwt
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// AI
	AIMode            string // mock | openai
	AIMaxOutputTokens int
	AITemperature     float64
	AITimeoutSeconds  int
	OpenAIAPIKey      string
	OpenAIModel       string

	// Migrations
	RunMigrationsOnStartup bool
}

// Load reads the configuration from environment variables. Every knob has
// a workable default for local development; hard requirements in prod are
// fatal here rather than at first use.
func Load() *Config {
	env := resolveEnv()

	cfg := &Config{
		Env:      env,
		Port:     envInt("PORT", 8080),
		LogLevel: envOr("LOG_LEVEL", "debug"),

		CORSAllowedOrigins:   corsOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env),
		CORSAllowCredentials: envBool("CORS_ALLOW_CREDENTIALS"),

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		UploadMaxMB:       envInt("UPLOAD_MAX_MB", 8),
		UploadAllowedMime: envOr("UPLOAD_ALLOWED_MIME", "image/jpeg,image/png,image/heic"),

		// One serving is one glass.
		WaterServingMl: positiveEnvInt("WATER_SERVING_ML", 250),

		RunMigrationsOnStartup: envBool("RUN_MIGRATIONS_ON_STARTUP"),
	}

	loadDatabase(cfg)
	cfg.Blob = loadBlob()
	loadAuth(cfg, env)
	loadAI(cfg)

	return cfg
}

// resolveEnv reads APP_ENV with ENV as a legacy fallback.
func resolveEnv() string {
	for _, key := range []string{"APP_ENV", "ENV"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "local"
}

func loadDatabase(cfg *Config) {
	cfg.DatabaseURLPooled = trimmedEnv("DATABASE_URL_POOLED")
	cfg.DatabaseURLRaw = trimmedEnv("DATABASE_URL")
	cfg.DatabaseURLDirect = trimmedEnv("DATABASE_URL_DIRECT")

	// Runtime traffic goes through the pooler when one is configured.
	for _, candidate := range []string{cfg.DatabaseURLPooled, cfg.DatabaseURLRaw, cfg.DatabaseURLDirect} {
		if candidate != "" {
			cfg.DatabaseURL = candidate
			break
		}
	}
}

func loadBlob() BlobConfig {
	return BlobConfig{
		Mode:     blobModeEnv("BLOB_MODE", BlobModeLocal),
		LocalDir: envOr("BLOB_LOCAL_DIR", "./data/blob"),
		S3: S3Config{
			Endpoint:          trimmedEnv("S3_ENDPOINT"),
			Region:            trimmedEnv("S3_REGION"),
			Bucket:            trimmedEnv("S3_BUCKET"),
			AccessKeyID:       trimmedEnv("S3_ACCESS_KEY_ID"),
			SecretAccessKey:   trimmedEnv("S3_SECRET_ACCESS_KEY"),
			PublicBaseURL:     trimmedEnv("S3_PUBLIC_BASE_URL"),
			PresignTTLSeconds: positiveEnvInt("S3_PRESIGN_TTL_SECONDS", 900),
			PreferPublicURL:   envBool("S3_PREFER_PUBLIC_URL"),
		},
	}
}

func loadAuth(cfg *Config, env string) {
	mode := strings.ToLower(trimmedEnv("AUTH_MODE"))
	switch mode {
	case "":
		mode = AuthModeNone
	case AuthModeNone, AuthModeJWT:
	default:
		log.Printf("WARNING: unknown AUTH_MODE=%q, fallback to none", mode)
		mode = AuthModeNone
	}
	cfg.AuthMode = mode

	cfg.JWTSecret = envOr("JWT_SECRET", "change_me")
	if cfg.JWTSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' outside local!")
	}
	if mode == AuthModeJWT && cfg.JWTSecret == "change_me" && env == "prod" {
		log.Fatal("JWT_SECRET is required when AUTH_MODE=jwt in prod")
	}

	cfg.JWTIssuer = envOr("JWT_ISSUER", "macrolog")

	// Anonymous sessions have no refresh flow, so tokens default to a year.
	cfg.JWTTTLMinutes = positiveEnvInt("JWT_TTL_MINUTES", 525600)
}

func loadAI(cfg *Config) {
	mode := strings.ToLower(trimmedEnv("AI_MODE"))
	switch mode {
	case "":
		mode = AIModeMock
	case AIModeMock, AIModeOpenAI:
	default:
		log.Printf("WARNING: unknown AI_MODE=%q, fallback to mock", mode)
		mode = AIModeMock
	}
	cfg.AIMode = mode

	cfg.AIMaxOutputTokens = positiveEnvInt("AI_MAX_OUTPUT_TOKENS", 600)
	cfg.AITemperature = clampFloat(envFloat("AI_TEMPERATURE", 0.3), 0, 2)
	cfg.AITimeoutSeconds = positiveEnvInt("AI_TIMEOUT_SECONDS", 20)
	cfg.OpenAIAPIKey = trimmedEnv("OPENAI_API_KEY")
	cfg.OpenAIModel = envOr("OPENAI_MODEL", "gpt-4.1-mini")

	if mode == AIModeOpenAI && cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY is required when AI_MODE=openai")
	}
}

// corsOrigins parses the comma-separated CORS_ALLOWED_ORIGINS value.
// Local development gets the usual dev-server origins; elsewhere an empty
// value means deny.
func corsOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil
	}

	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

func blobModeEnv(key, fallback string) string {
	mode := strings.ToLower(trimmedEnv(key))
	switch mode {
	case "":
		return fallback
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, fallback)
		return fallback
	}
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, fallback string) string {
	if v := trimmedEnv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(trimmedEnv(key))
	if err != nil {
		return fallback
	}
	return v
}

// positiveEnvInt is envInt for knobs where zero or negative values make
// no sense and fall back to the default.
func positiveEnvInt(key string, fallback int) int {
	if v := envInt(key, fallback); v > 0 {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(trimmedEnv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func envBool(key string) bool {
	switch strings.ToLower(trimmedEnv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
