package storage

import (
	"context"
	"strings"

	"movrec/pkg/contracts/domain"
)

// IndexColumn is the primary key column holding the 0-based row index
const IndexColumn = "row_index"

// Sink receives the cleaned table at the end of a run
type Sink interface {
	// Name identifies the sink in logs and metrics
	Name() string
	// Write replaces the sink's contents with table and returns the rows stored
	Write(ctx context.Context, table *domain.Table) (int, error)
	Close() error
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL builds the DDL shared by both sinks
func createTableSQL(table string, schema *domain.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	b.WriteString(quoteIdent(IndexColumn))
	b.WriteString(" INTEGER PRIMARY KEY")
	for _, name := range schema.Names() {
		b.WriteString(", ")
		b.WriteString(quoteIdent(name))
		b.WriteString(" TEXT NOT NULL")
	}
	b.WriteString(")")
	return b.String()
}
