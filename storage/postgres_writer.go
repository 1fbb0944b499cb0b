package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"classifieds-scraper/models"
)

// postgres caps bind parameters per statement at 65535.
const pgMaxParams = 60000

// PostgresStore persists cleaned tables to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL and waits for it to answer.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func pgType(k columnKind) string {
	switch k {
	case colInt:
		return "BIGINT"
	case colFloat:
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}

// Store recreates table name with one column per table column and inserts all
// rows in batches, inside a single transaction.
func (ps *PostgresStore) Store(ctx context.Context, name string, t *models.Table) error {
	if len(t.Columns) == 0 {
		return nil
	}

	kinds := inferKinds(t)
	quoted := make([]string, len(t.Columns))
	defs := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		quoted[j] = pq.QuoteIdentifier(c)
		defs[j] = quoted[j] + " " + pgType(kinds[j])
	}
	table := pq.QuoteIdentifier(name)

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("postgres: drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+table+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return fmt.Errorf("postgres: create %s: %w", name, err)
	}

	batchSize := pgMaxParams / len(t.Columns)
	if batchSize < 1 {
		batchSize = 1
	}
	if batchSize > 500 {
		batchSize = 500
	}
	for i := 0; i < len(t.Rows); i += batchSize {
		end := i + batchSize
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		if err := insertBatch(ctx, tx, table, quoted, kinds, t.Rows[i:end]); err != nil {
			return fmt.Errorf("postgres: insert into %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, table string, cols []string, kinds []columnKind, batch [][]models.Cell) error {
	n := len(cols)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*n)

	for idx, row := range batch {
		ph := make([]string, n)
		for j := range cols {
			ph[j] = fmt.Sprintf("$%d", idx*n+j+1)
			valueArgs = append(valueArgs, sqlValue(row[j], kinds[j]))
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(cols, ","), strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// Load reads a stored table back.
func (ps *PostgresStore) Load(ctx context.Context, name string) (*models.Table, error) {
	rows, err := ps.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(name))
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s: %w", name, err)
	}
	defer rows.Close()

	t, err := scanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s: %w", name, err)
	}
	return t, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
