package blob

import (
	"fmt"
	"strings"

	appcfg "github.com/dkotl/macrolog/internal/config"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NewBlobStore builds the photo store for BLOB_MODE local|s3|auto and
// reports the mode actually selected. Auto mode falls back to local
// storage whenever S3 is unusable, so development setups need no
// object-storage credentials.
func NewBlobStore(cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	switch mode := strings.ToLower(strings.TrimSpace(cfg.Mode)); mode {
	case "", appcfg.BlobModeLocal:
		store, err := NewLocalStore(cfg.LocalDir)
		if err != nil {
			return nil, "", fmt.Errorf("BLOB_MODE=local init failed: %w", err)
		}
		logf(logger, "INFO blob: mode=local (forced) dir=%s", cfg.LocalDir)
		return store, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			level, code, msg := cfg.S3.Diagnostics()
			logf(logger, "%s blob.s3: code=%s %s", level, code, msg)
			logf(logger, "INFO blob.s3: %s", cfg.S3.DiagnosticsSummary())

			store, err := NewLocalStore(cfg.LocalDir)
			if err != nil {
				return nil, "", fmt.Errorf("BLOB_MODE=auto local fallback failed: %w", err)
			}
			logf(logger, "INFO blob: mode=local (auto, S3 not configured)")
			return store, appcfg.BlobModeLocal, nil
		}

		store, err := openS3(cfg.S3, logger)
		if err != nil {
			logf(logger, "WARN blob.s3: init_failed=%q, fallback=local", err.Error())
			local, localErr := NewLocalStore(cfg.LocalDir)
			if localErr != nil {
				return nil, "", fmt.Errorf("BLOB_MODE=auto local fallback failed: %w", localErr)
			}
			return local, appcfg.BlobModeLocal, nil
		}
		logf(logger, "INFO blob: mode=s3 (auto, configured)")
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if missing := cfg.S3.MissingRequired(); len(missing) > 0 {
			logf(logger, "FATAL blob.s3: code=s3_config_incomplete missing=%v", missing)
			logf(logger, "FATAL blob.s3: %s", cfg.S3.DiagnosticsSummary())
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := openS3(cfg.S3, logger)
		if err != nil {
			logf(logger, "FATAL blob.s3: init_failed=%v", err)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}
		logf(logger, "INFO blob: mode=s3 (forced)")
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", cfg.Mode)
	}
}

// openS3 logs the ready diagnostics and dials the configured bucket.
func openS3(cfg appcfg.S3Config, logger Logger) (*S3Store, error) {
	logf(logger, "INFO blob.s3: code=s3_ready %s", cfg.DiagnosticsSummary())
	return NewS3Store(cfg)
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
