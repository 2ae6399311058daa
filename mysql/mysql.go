// Package mysql writes records to a MySQL table using go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CodeBeast357/downdrag"
	ddsql "github.com/CodeBeast357/downdrag/sql"
	"github.com/go-sql-driver/mysql"
)

// Config returns the driver configuration for the connection settings.
func Config(c downdrag.MySQLConnection) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = c.Addr()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	return cfg
}

// Ensure Sink implements downdrag.Sink at compile time.
var _ downdrag.Sink = (*Sink)(nil)

// Sink inserts records into a MySQL table. The connection is opened on Open
// and closed on Close.
type Sink struct {
	*ddsql.Sink

	cfg    *mysql.Config
	table  string
	create bool
	db     *sql.DB
}

// NewSink returns a sink inserting into table.
func NewSink(conn downdrag.MySQLConnection, table string, create bool) *Sink {
	return &Sink{cfg: Config(conn), table: table, create: create}
}

func (s *Sink) Open(ctx context.Context, fields []downdrag.Field) error {
	connector, err := mysql.NewConnector(s.cfg)
	if err != nil {
		return downdrag.Errorf(downdrag.EINVALID, "mysql connection: %v", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connect to mysql %s: %w", s.cfg.Addr, err)
	}
	sink := ddsql.NewSink(db, s.table, ddsql.WithCreate(s.create), ddsql.WithDialect(ddsql.MySQL))
	if err := sink.Open(ctx, fields); err != nil {
		db.Close()
		return err
	}
	s.db, s.Sink = db, sink
	return nil
}

// Close releases the statement and the connection pool.
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
