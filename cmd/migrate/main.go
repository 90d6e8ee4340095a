package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"contentpilot/internal/config"
	"contentpilot/internal/repository/postgres"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	steps := flag.Int("steps", 0, "Number of steps to apply (0 = all)")
	force := flag.Int("force", -1, "Force the schema version and clear the dirty flag, then exit")
	version := flag.Bool("version", false, "Print the current schema version and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// SAFETY: a full rollback wipes every table
	if cfg.Environment == "prod" && *direction == "down" && *steps == 0 {
		log.Fatal("BLOCKED: full down migration is not allowed in production, pass -steps")
	}

	m, err := postgres.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("No migration applied yet")
			return
		}
		if err != nil {
			log.Fatalf("Failed to read version: %v", err)
		}
		log.Printf("Schema version %d (dirty: %t)", v, dirty)

	case *force >= 0:
		if err := m.Force(*force); err != nil {
			log.Fatalf("Failed to force version %d: %v", *force, err)
		}
		log.Printf("Forced schema version %d", *force)

	default:
		err := postgres.ApplyDirection(m, *direction, *steps)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("Schema already up to date")
			return
		}
		if err != nil {
			log.Fatalf("Migration %s failed: %v", *direction, err)
		}
		log.Printf("Migration %s applied", *direction)
	}
}
