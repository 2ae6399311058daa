package downdrag

import (
	"context"
	"errors"
)

// Sink consumes records in emission order. Open declares the ordered field
// list once; each record is then written as BeginRecord, one WriteField per
// field after the item index, and EndRecord. Close must be called on every
// exit path once Open succeeded.
type Sink interface {
	Open(ctx context.Context, fields []Field) error
	BeginRecord(index int) error
	WriteField(v Value) error
	EndRecord(ctx context.Context) error
	Close() error
}

// WriteRecord writes rec to sink as item number index.
func WriteRecord(ctx context.Context, sink Sink, index int, rec *Record) error {
	if err := sink.BeginRecord(index); err != nil {
		return err
	}
	for _, v := range rec.Values() {
		if err := sink.WriteField(v); err != nil {
			return err
		}
	}
	return sink.EndRecord(ctx)
}

// Ensure MultiSink implements Sink at compile time.
var _ Sink = (*MultiSink)(nil)

// MultiSink replays one call sequence to several sinks.
type MultiSink struct {
	sinks  []Sink
	opened []Sink
}

// NewMultiSink returns a sink that fans out to sinks in order.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Open opens every sink. If one fails, the sinks already opened are closed.
func (m *MultiSink) Open(ctx context.Context, fields []Field) error {
	for _, s := range m.sinks {
		if err := s.Open(ctx, fields); err != nil {
			return errors.Join(err, m.Close())
		}
		m.opened = append(m.opened, s)
	}
	return nil
}

// BeginRecord starts a record on every sink.
func (m *MultiSink) BeginRecord(index int) error {
	for _, s := range m.opened {
		if err := s.BeginRecord(index); err != nil {
			return err
		}
	}
	return nil
}

// WriteField writes v to every sink.
func (m *MultiSink) WriteField(v Value) error {
	for _, s := range m.opened {
		if err := s.WriteField(v); err != nil {
			return err
		}
	}
	return nil
}

// EndRecord ends the record on every sink.
func (m *MultiSink) EndRecord(ctx context.Context) error {
	for _, s := range m.opened {
		if err := s.EndRecord(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every opened sink, even when some fail.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.opened {
		errs = append(errs, s.Close())
	}
	m.opened = nil
	return errors.Join(errs...)
}
