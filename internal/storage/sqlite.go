package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"movrec/internal/errors"
	"movrec/pkg/contracts/domain"
)

// OpenSQLite opens the database file at path, creating its directory when needed
func OpenSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous = NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma synchronous: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// SQLiteSink stores the table in a SQLite database
type SQLiteSink struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// NewSQLiteSink opens path and returns a sink writing to table
func NewSQLiteSink(path, table string, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := OpenSQLite(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open sqlite database", err).
			WithContext("path", path)
	}

	return &SQLiteSink{db: db, table: table, logger: logger}, nil
}

// Name returns "sqlite"
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Write drops and recreates the table and inserts every row in one transaction
func (s *SQLiteSink) Write(ctx context.Context, table *domain.Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.fail("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(s.table)); err != nil {
		return 0, s.fail("drop table", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(s.table, table.Schema)); err != nil {
		return 0, s.fail("create table", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.table, table.Schema))
	if err != nil {
		return 0, s.fail("prepare insert", err)
	}
	defer stmt.Close()

	args := make([]any, table.Schema.Width()+1)
	for i, record := range table.Rows {
		args[0] = i
		for j, v := range record {
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, s.fail(fmt.Sprintf("insert row %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, s.fail("commit", err)
	}

	s.logger.InfoContext(ctx, "Stored table in sqlite",
		slog.String("table", s.table),
		slog.Int("rows", table.Len()))

	return table.Len(), nil
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteSink) fail(action string, err error) error {
	return errors.NewStorageError("sqlite: "+action, err).WithContext("table", s.table)
}

func insertSQL(table string, schema *domain.Schema) string {
	columns := make([]string, 0, schema.Width()+1)
	columns = append(columns, quoteIdent(IndexColumn))
	for _, name := range schema.Names() {
		columns = append(columns, quoteIdent(name))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(columns, ", "), placeholders)
}
