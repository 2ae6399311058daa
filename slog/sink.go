package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/CodeBeast357/downdrag"
)

// Ensure LoggingSink implements downdrag.Sink.
var _ downdrag.Sink = (*LoggingSink)(nil)

// LoggingSink wraps a Sink with logging. Records are logged at debug level.
type LoggingSink struct {
	next   downdrag.Sink
	name   string
	logger *slog.Logger

	index   int
	records int
	opened  time.Time
}

// NewLoggingSink creates a new LoggingSink. name identifies the sink in log
// output.
func NewLoggingSink(next downdrag.Sink, name string, logger *slog.Logger) *LoggingSink {
	return &LoggingSink{next: next, name: name, logger: logger}
}

// Open delegates to the wrapped sink and logs the declared fields.
func (s *LoggingSink) Open(ctx context.Context, fields []downdrag.Field) (err error) {
	defer func() {
		s.logger.Info("sink open",
			"sink", s.name,
			"fields", len(fields),
			"err", err,
		)
	}()
	s.opened = time.Now()
	return s.next.Open(ctx, fields)
}

func (s *LoggingSink) BeginRecord(index int) error {
	s.index = index
	return s.next.BeginRecord(index)
}

func (s *LoggingSink) WriteField(v downdrag.Value) error {
	return s.next.WriteField(v)
}

// EndRecord delegates to the wrapped sink and logs the record.
func (s *LoggingSink) EndRecord(ctx context.Context) (err error) {
	defer func() {
		if err == nil {
			s.records++
		}
		s.logger.Debug("sink record",
			"sink", s.name,
			"itemindex", s.index,
			"err", err,
		)
	}()
	return s.next.EndRecord(ctx)
}

// Close delegates to the wrapped sink and logs the number of records
// written.
func (s *LoggingSink) Close() (err error) {
	defer func() {
		s.logger.Info("sink close",
			"sink", s.name,
			"records", s.records,
			"duration", time.Since(s.opened),
			"err", err,
		)
	}()
	return s.next.Close()
}
