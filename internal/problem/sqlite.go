// internal/problem/sqlite.go
//
// SQL-backed problem source over the `problems` table (see
// assets/sql/001_problems.sql). Written against database/sql; the server
// opens it with the sqlite3 driver.

package problem

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// SQLRepository loads Definitions from the problems table.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository { return &SQLRepository{db: db} }

// Load returns every stored problem ordered by number.
func (s *SQLRepository) Load(ctx context.Context) ([]Definition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, difficulty, luck, secret, validators FROM problems ORDER BY number ASC`)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	defer rows.Close()

	var out []Definition
	for rows.Next() {
		var (
			d   Definition
			ids string
		)
		if err := rows.Scan(&d.Number, &d.Difficulty, &d.Luck, &d.Secret, &ids); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		d.ValidatorIDs, err = splitIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("problem %d: %w", d.Number, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Count returns the number of stored problems.
func (s *SQLRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM problems`).Scan(&n)
	return n, err
}

// Seed inserts defs in one transaction, replacing rows with the same number.
func (s *SQLRepository) Seed(ctx context.Context, defs []Definition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT OR REPLACE INTO problems (number, difficulty, luck, secret, validators)
        VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, d := range defs {
		if _, err := stmt.ExecContext(ctx, d.Number, d.Difficulty, d.Luck, d.Secret, joinIDs(d.ValidatorIDs)); err != nil {
			return fmt.Errorf("seed problem %d: %w", d.Number, err)
		}
	}
	return tx.Commit()
}

// SeedIfEmpty seeds only when the table has no rows and reports whether it did.
func (s *SQLRepository) SeedIfEmpty(ctx context.Context, defs []Definition) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, s.Seed(ctx, defs)
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: validators %q", ErrMalformedRow, s)
		}
		out[i] = n
	}
	return out, nil
}
