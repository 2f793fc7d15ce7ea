package main

import (
	"context"
	"log"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/dbmigrate"
	"github.com/dkotl/macrolog/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	if cfg.RunMigrationsOnStartup {
		dbURL, source, _, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}

		log.Printf("startup migrations: command=up using=%s", source)
		if err := dbmigrate.Run(context.Background(), "up", dbURL, dbmigrate.DefaultMigrationsDir); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("startup migrations: completed")
	}

	validateProductionConfig(cfg)

	server := httpserver.New(cfg)
	defer server.Close()

	log.Fatal(server.Start())
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// No secrets are ever printed, only masked indicators ("set" / "not set").
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Macrolog API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)

	log.Println("---- database ----")
	switch {
	case cfg.DatabaseURL == "":
		log.Printf("  storage          = in-memory (no DATABASE_URL)")
	case cfg.DatabaseURLPooled != "" && cfg.DatabaseURL == cfg.DatabaseURLPooled:
		log.Printf("  storage          = postgres (via DATABASE_URL_POOLED)")
	default:
		log.Printf("  storage          = postgres")
	}
	log.Printf("  pooled           = %s", maskPresence(cfg.DatabaseURLPooled))
	log.Printf("  direct           = %s", maskPresence(cfg.DatabaseURLDirect))
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	if cfg.RunMigrationsOnStartup && cfg.DatabaseURLDirect == "" {
		log.Printf("  migrations_via   = (will fail, DATABASE_URL_DIRECT not set)")
	}

	log.Println("---- auth ----")
	log.Printf("  auth_mode        = %s", cfg.AuthMode)
	if cfg.AuthMode == config.AuthModeJWT {
		log.Printf("  jwt_secret       = %s", secretStatus(cfg.JWTSecret, "change_me"))
		log.Printf("  jwt_ttl_minutes  = %d", cfg.JWTTTLMinutes)
	}

	log.Println("---- blob ----")
	log.Printf("  blob_mode        = %s", cfg.Blob.Mode)
	if cfg.Blob.Mode == config.BlobModeLocal {
		log.Printf("  local_dir        = %s", cfg.Blob.LocalDir)
	} else {
		log.Printf("  s3: %s", cfg.Blob.S3.DiagnosticsSummary())
	}

	log.Println("---- ai ----")
	log.Printf("  ai_mode          = %s", cfg.AIMode)
	if cfg.AIMode == config.AIModeOpenAI {
		log.Printf("  openai_model     = %s", cfg.OpenAIModel)
		log.Printf("  openai_api_key   = %s", maskPresence(cfg.OpenAIAPIKey))
	}

	log.Println("---- tracking ----")
	log.Printf("  water_serving_ml = %d", cfg.WaterServingMl)
	log.Printf("  upload_max_mb    = %d", cfg.UploadMaxMB)

	log.Println("==================================")
}

// validateProductionConfig fails fast on settings that would otherwise
// surface as runtime errors after deploy.
func validateProductionConfig(cfg *config.Config) {
	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL blob: BLOB_MODE=s3 but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if cfg.Env != "prod" && cfg.Env != "staging" {
		return
	}

	if cfg.AIMode == config.AIModeOpenAI && strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.Fatalf("FATAL ai: AI_MODE=openai but OPENAI_API_KEY is not set in %s", cfg.Env)
	}
	if cfg.AuthMode == config.AuthModeJWT && cfg.JWTSecret == "change_me" {
		log.Fatalf("FATAL auth: JWT_SECRET must not be 'change_me' in %s with AUTH_MODE=jwt", cfg.Env)
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("FATAL db: no DATABASE_URL configured in %s", cfg.Env)
	}
}

func maskPresence(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func secretStatus(v, insecureDefault string) string {
	switch strings.TrimSpace(v) {
	case "":
		return "not set"
	case insecureDefault:
		return "set (DEFAULT, insecure '" + insecureDefault + "')"
	default:
		return "set (custom)"
	}
}
