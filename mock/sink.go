package mock

import (
	"context"

	"github.com/CodeBeast357/downdrag"
)

var _ downdrag.Sink = (*Sink)(nil)

// Sink is a mock implementation of downdrag.Sink.
type Sink struct {
	OpenFn        func(ctx context.Context, fields []downdrag.Field) error
	BeginRecordFn func(index int) error
	WriteFieldFn  func(v downdrag.Value) error
	EndRecordFn   func(ctx context.Context) error
	CloseFn       func() error
}

func (s *Sink) Open(ctx context.Context, fields []downdrag.Field) error {
	return s.OpenFn(ctx, fields)
}

func (s *Sink) BeginRecord(index int) error {
	return s.BeginRecordFn(index)
}

func (s *Sink) WriteField(v downdrag.Value) error {
	return s.WriteFieldFn(v)
}

func (s *Sink) EndRecord(ctx context.Context) error {
	return s.EndRecordFn(ctx)
}

func (s *Sink) Close() error {
	return s.CloseFn()
}

var _ downdrag.Sink = (*Recorder)(nil)

// Recorder is an in-memory sink that keeps every record it is given.
type Recorder struct {
	Fields  []downdrag.Field
	Rows    [][]downdrag.Value
	Indexes []int
	Opened  bool
	Closed  bool

	row []downdrag.Value
}

func (r *Recorder) Open(_ context.Context, fields []downdrag.Field) error {
	r.Fields = fields
	r.Opened = true
	return nil
}

func (r *Recorder) BeginRecord(index int) error {
	r.Indexes = append(r.Indexes, index)
	r.row = []downdrag.Value{downdrag.IntValue(int64(index))}
	return nil
}

func (r *Recorder) WriteField(v downdrag.Value) error {
	r.row = append(r.row, v)
	return nil
}

func (r *Recorder) EndRecord(context.Context) error {
	r.Rows = append(r.Rows, r.row)
	r.row = nil
	return nil
}

func (r *Recorder) Close() error {
	r.Closed = true
	return nil
}

// Column returns the values of the named field across all rows.
func (r *Recorder) Column(name string) []downdrag.Value {
	col := -1
	for i, f := range r.Fields {
		if f.Name == name {
			col = i
		}
	}
	if col < 0 {
		return nil
	}
	values := make([]downdrag.Value, 0, len(r.Rows))
	for _, row := range r.Rows {
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values
}
