// Package sqlite provides SQLite result storage.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CodeBeast357/downdrag"
	ddsql "github.com/CodeBeast357/downdrag/sql"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; this also keeps an in-memory database alive
	// across statements.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	db.db = conn
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// SQL returns the underlying handle. Valid after Open.
func (db *DB) SQL() *sql.DB {
	return db.db
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// Ensure Sink implements downdrag.Sink at compile time.
var _ downdrag.Sink = (*Sink)(nil)

// Sink writes records to a table of a SQLite database file, opening the
// database on Open and closing it on Close.
type Sink struct {
	*ddsql.Sink

	db     *DB
	table  string
	create bool
}

// NewSink returns a sink inserting into table of the database at path. When
// create is set the table is created if missing.
func NewSink(path, table string, create bool) *Sink {
	return &Sink{db: NewDB(path), table: table, create: create}
}

func (s *Sink) Open(ctx context.Context, fields []downdrag.Field) error {
	if err := s.db.Open(); err != nil {
		return err
	}
	s.Sink = ddsql.NewSink(s.db.SQL(), s.table, ddsql.WithCreate(s.create), ddsql.WithDialect(ddsql.SQLite))
	if err := s.Sink.Open(ctx, fields); err != nil {
		s.db.Close()
		s.Sink = nil
		return err
	}
	return nil
}

// Close releases the statement and closes the database.
func (s *Sink) Close() error {
	if s.Sink == nil {
		return nil
	}
	err := s.Sink.Close()
	s.Sink = nil
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}
