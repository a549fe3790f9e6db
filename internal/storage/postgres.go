package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"movrec/internal/config"
	"movrec/internal/errors"
	"movrec/pkg/contracts/domain"
)

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// PostgresSink stores the table in PostgreSQL using COPY
type PostgresSink struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// NewPostgresSink connects to the database described by cfg
func NewPostgresSink(ctx context.Context, cfg config.DBConfig, table string, logger *slog.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, errors.NewStorageError("failed to connect to postgres", err).
			WithContext("host", cfg.Host).
			WithContext("database", cfg.Name)
	}

	return &PostgresSink{pool: pool, table: table, logger: logger}, nil
}

// Name returns "postgres"
func (s *PostgresSink) Name() string {
	return "postgres"
}

// Write recreates the table and copies every row in one transaction
func (s *PostgresSink) Write(ctx context.Context, table *domain.Table) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, s.fail("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{s.table}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return 0, s.fail("drop table", err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(s.table, table.Schema)); err != nil {
		return 0, s.fail("create table", err)
	}

	columns := append([]string{IndexColumn}, table.Schema.Names()...)
	copied, err := tx.CopyFrom(ctx, ident, columns, pgx.CopyFromSlice(table.Len(), func(i int) ([]any, error) {
		row := make([]any, 0, len(columns))
		row = append(row, int64(i))
		for _, v := range table.Rows[i] {
			row = append(row, v)
		}
		return row, nil
	}))
	if err != nil {
		return 0, s.fail("copy rows", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, s.fail("commit", err)
	}

	s.logger.InfoContext(ctx, "Stored table in postgres",
		slog.String("table", s.table),
		slog.Int64("rows", copied))

	return int(copied), nil
}

// Close closes the connection pool
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresSink) fail(action string, err error) error {
	return errors.NewStorageError("postgres: "+action, err).WithContext("table", s.table)
}
