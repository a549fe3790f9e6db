// Package storage loads the cleaned review table into databases.
//
// Two sinks are available, both replacing the target table on every run so
// that the database mirrors the TSV output:
//   - SQLiteSink: a local SQLite file opened through mattn/go-sqlite3
//   - PostgresSink: a PostgreSQL table filled with COPY through pgx
//
// Every column is stored as TEXT, next to an integer row_index primary key
// that matches the index column of the TSV output.
package storage
