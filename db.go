// db.go
//
// Database helpers for the Turing server.
// Responsibilities:
//   - Opening SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from the embedded assets/sql/*.sql (idempotent,
//     recorded in _migrations).
//   - Loading the problem set from the configured source.
//
// Note: This file assumes SQLite but can be adapted for other backends.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/turing/internal/config"
	"github.com/robalobadob/turing/internal/problem"
)

/**
 * openDB opens (and creates if missing) a SQLite database file.
 *
 * - Ensures parent directory exists for relative DSNs (e.g. ./data/turing.db).
 * - Configures busy timeout and WAL journaling mode.
 * - Enforces foreign keys.
 */
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

/**
 * migrate applies the *.sql files found at the root of fsys.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each file in lexical order, each in its own transaction.
 * - Skips files already recorded.
 */
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* --------------------------- problem loading ---------------------------- */

/**
 * loadProblems reads definitions from the configured source and resolves
 * them into playable problems. Any invalid definition fails the whole load.
 *
 * - PROBLEM_SOURCE=csv: read PROBLEMS_FILE (or the embedded set).
 * - PROBLEM_SOURCE=sqlite: seed an empty problems table from the CSV source,
 *   then play from the table.
 */
func loadProblems(ctx context.Context, cfg config.Config, db *sql.DB) ([]problem.Problem, error) {
	csvRepo := problem.NewCSVRepository(cfg.ProblemsFile)

	var repo problem.Repository = csvRepo
	if cfg.ProblemSource == config.SourceSQLite {
		sqlRepo := problem.NewSQLRepository(db)
		defs, err := csvRepo.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("read seed problems: %w", err)
		}
		seeded, err := sqlRepo.SeedIfEmpty(ctx, defs)
		if err != nil {
			return nil, fmt.Errorf("seed problems: %w", err)
		}
		if seeded {
			log.Info().Int("count", len(defs)).Msg("seeded problems table")
		}
		repo = sqlRepo
	}

	defs, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return problem.Resolve(defs)
}
