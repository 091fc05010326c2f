package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"server/internal/infra"
)

// Applies the SQL files under migrations/ in lexical order, tracking applied
// versions in a schema_migrations table.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to reach database")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`); err != nil {
		logger.Fatal().Err(err).Msg("failed to create schema_migrations")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", dir).Msg("failed to read migrations dir")
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, name := range files {
		version := strings.TrimSuffix(name, ".sql")
		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists); err != nil {
			logger.Fatal().Err(err).Str("version", version).Msg("failed to check migration")
		}
		if exists {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Fatal().Err(err).Str("file", name).Msg("failed to read migration")
		}
		tx, err := db.Begin()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to begin transaction")
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			logger.Fatal().Err(err).Str("file", name).Msg("migration failed")
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback()
			logger.Fatal().Err(err).Str("version", version).Msg("failed to record migration")
		}
		if err := tx.Commit(); err != nil {
			logger.Fatal().Err(err).Str("version", version).Msg("failed to commit migration")
		}
		logger.Info().Str("version", version).Msg("migration applied")
		applied++
	}
	fmt.Printf("done: %d migration(s) applied\n", applied)
}
