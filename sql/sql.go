// Package sql implements a downdrag.Sink inserting records into a table
// through database/sql. Drivers are wired by the sqlite and mysql packages.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/CodeBeast357/downdrag"
)

// Dialect holds the column types used when the sink creates its table.
type Dialect struct {
	Name   string
	String string
	Int    string
	Float  string
}

// Dialects.
var (
	SQLite = Dialect{Name: "sqlite", String: "TEXT", Int: "INTEGER", Float: "REAL"}
	MySQL  = Dialect{Name: "mysql", String: "TEXT", Int: "BIGINT", Float: "DOUBLE"}
)

func (d Dialect) columnType(k downdrag.Kind) string {
	switch k {
	case downdrag.KindInt:
		return d.Int
	case downdrag.KindFloat:
		return d.Float
	default:
		return d.String
	}
}

// Quote returns name as a backtick-quoted identifier.
func Quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Option configures a Sink.
type Option func(*Sink)

// WithCreate creates the table on Open when it does not exist.
func WithCreate(create bool) Option {
	return func(s *Sink) { s.create = create }
}

// WithDialect sets the dialect used for CREATE TABLE. Defaults to SQLite.
func WithDialect(d Dialect) Option {
	return func(s *Sink) { s.dialect = d }
}

// Ensure Sink implements downdrag.Sink at compile time.
var _ downdrag.Sink = (*Sink)(nil)

// Sink inserts one row per record. Column names are the field names; empty
// values are written as NULL. The caller owns db.
type Sink struct {
	db      *sql.DB
	table   string
	create  bool
	dialect Dialect

	stmt *sql.Stmt
	row  []any
}

// NewSink returns a sink inserting into table.
func NewSink(db *sql.DB, table string, opts ...Option) *Sink {
	s := &Sink{db: db, table: table, dialect: SQLite}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateStatement returns the CREATE TABLE statement for fields.
func (s *Sink) CreateStatement(fields []downdrag.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = fmt.Sprintf("%s %s", Quote(f.Name), s.dialect.columnType(f.Kind))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", Quote(s.table), strings.Join(cols, ", "))
}

// InsertStatement returns the INSERT statement for fields.
func (s *Sink) InsertStatement(fields []downdrag.Field) string {
	cols := make([]string, len(fields))
	marks := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = Quote(f.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", Quote(s.table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func (s *Sink) Open(ctx context.Context, fields []downdrag.Field) error {
	if s.create {
		if _, err := s.db.ExecContext(ctx, s.CreateStatement(fields)); err != nil {
			return fmt.Errorf("create table %s: %w", s.table, err)
		}
	}
	stmt, err := s.db.PrepareContext(ctx, s.InsertStatement(fields))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", s.table, err)
	}
	s.stmt = stmt
	s.row = make([]any, 0, len(fields))
	return nil
}

func (s *Sink) BeginRecord(index int) error {
	s.row = append(s.row[:0], int64(index))
	return nil
}

func (s *Sink) WriteField(v downdrag.Value) error {
	s.row = append(s.row, arg(v))
	return nil
}

func (s *Sink) EndRecord(ctx context.Context) error {
	if _, err := s.stmt.ExecContext(ctx, s.row...); err != nil {
		return fmt.Errorf("insert into %s: %w", s.table, err)
	}
	return nil
}

// Close releases the prepared statement.
func (s *Sink) Close() error {
	if s.stmt == nil {
		return nil
	}
	err := s.stmt.Close()
	s.stmt = nil
	return err
}

func arg(v downdrag.Value) any {
	switch v.Kind {
	case downdrag.KindString:
		return v.Str
	case downdrag.KindInt:
		return v.Int
	case downdrag.KindFloat:
		return v.Float
	default:
		return nil
	}
}
