package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"classifieds-scraper/models"
)

// SQLiteStore persists cleaned tables to a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func sqliteType(k columnKind) string {
	switch k {
	case colInt:
		return "INTEGER"
	case colFloat:
		return "REAL"
	}
	return "TEXT"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Store recreates table name and inserts every row with a prepared statement.
func (s *SQLiteStore) Store(ctx context.Context, name string, t *models.Table) error {
	if len(t.Columns) == 0 {
		return nil
	}

	kinds := inferKinds(t)
	quoted := make([]string, len(t.Columns))
	defs := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		quoted[j] = quoteIdent(c)
		defs[j] = quoted[j] + " " + sqliteType(kinds[j])
	}
	table := quoteIdent(name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("sqlite: drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+table+" ("+strings.Join(defs, ",")+")"); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", name, err)
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(t.Columns)), ",")
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" ("+strings.Join(quoted, ",")+") VALUES ("+ph+")")
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for _, row := range t.Rows {
		for j, c := range row {
			args[j] = sqlValue(c, kinds[j])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite: insert into %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Load reads a stored table back.
func (s *SQLiteStore) Load(ctx context.Context, name string) (*models.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", name, err)
	}
	defer rows.Close()

	t, err := scanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", name, err)
	}
	return t, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
