package dbmigrate

import (
	"fmt"

	"github.com/dkotl/macrolog/internal/config"
)

// DefaultMigrationsDir is resolved relative to the working directory.
const DefaultMigrationsDir = "migrations"

// SelectDatabaseURL picks the connection string for DDL work. Transaction
// poolers break goose's session state, so the direct URL wins and the
// pooled URL is a last resort that comes with a warning. With requireDirect
// set, only DATABASE_URL_DIRECT is accepted.
func SelectDatabaseURL(cfg *config.Config, requireDirect bool) (dbURL, source, warning string, err error) {
	if requireDirect {
		if cfg.DatabaseURLDirect == "" {
			return "", "", "", fmt.Errorf("DATABASE_URL_DIRECT is required for DDL/migrations")
		}
		return cfg.DatabaseURLDirect, "DATABASE_URL_DIRECT", "", nil
	}

	candidates := []struct {
		url     string
		source  string
		warning string
	}{
		{cfg.DatabaseURLDirect, "DATABASE_URL_DIRECT", ""},
		{cfg.DatabaseURLRaw, "DATABASE_URL", ""},
		{cfg.DatabaseURLPooled, "DATABASE_URL_POOLED", "running DDL through a pooled connection is unreliable; set DATABASE_URL_DIRECT"},
	}
	for _, c := range candidates {
		if c.url != "" {
			return c.url, c.source, c.warning, nil
		}
	}

	return "", "", "", fmt.Errorf("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
}
