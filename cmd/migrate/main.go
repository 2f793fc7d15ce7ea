package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/dbmigrate"
)

func main() {
	dir := flag.String("dir", dbmigrate.DefaultMigrationsDir, "directory with migration files")
	flag.Parse()

	command := flag.Arg(0)
	switch command {
	case "up", "status", "down":
	case "":
		log.Fatal("usage: migrate [-dir migrations] up|status|down")
	default:
		log.Fatalf("unsupported command %q (allowed: up, status, down)", command)
	}

	cfg := config.Load()
	dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal(err)
	}
	if warning != "" {
		log.Printf("WARN migrate: %s", warning)
	}
	log.Printf("migrate: command=%s using=%s", command, source)

	// Interrupts cancel the run so goose can release its session locks.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dbmigrate.Run(ctx, command, dbURL, *dir); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrate: %s completed successfully", command)
}
