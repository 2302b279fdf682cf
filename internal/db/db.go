package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	_ "github.com/lib/pq"

	"github.com/Araychaudhur/portfolio-2025/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// ApplyMigrations brings the schema up. Every statement in the migration
// files is IF NOT EXISTS, so each file runs as one multi-statement exec and
// re-running on an already-migrated database is a no-op. Afterwards the
// pgvector extension is verified: without it the embedding column, and with
// it the whole ask path, cannot exist.
func ApplyMigrations(db *sql.DB) error {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", path.Base(file), err)
		}
	}
	return ensureVectorExtension(db)
}

func ensureVectorExtension(db *sql.DB) error {
	var installed bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`).Scan(&installed)
	if err != nil {
		return fmt.Errorf("check pgvector extension: %w", err)
	}
	if !installed {
		return fmt.Errorf("pgvector extension is not installed on this database; the documents.embedding column requires it")
	}
	return nil
}
