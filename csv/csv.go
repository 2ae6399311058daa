// Package csv implements a downdrag.Sink writing comma-separated files.
package csv

import (
	"context"
	"encoding/csv"
	"strconv"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/fs"
)

// Ensure Sink implements downdrag.Sink at compile time.
var _ downdrag.Sink = (*Sink)(nil)

// Sink writes a header line followed by one line per record. Each record is
// flushed when it ends; the file appears at its final path on Close.
type Sink struct {
	path string

	file *fs.File
	w    *csv.Writer
	row  []string
}

// NewSink returns a sink writing to path.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

func (s *Sink) Open(_ context.Context, fields []downdrag.Field) error {
	file, err := fs.Create(s.path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	if err := w.Write(downdrag.FieldNames(fields)); err != nil {
		_ = file.Abort()
		return err
	}
	s.file, s.w = file, w
	return nil
}

func (s *Sink) BeginRecord(index int) error {
	s.row = append(s.row[:0], strconv.Itoa(index))
	return nil
}

func (s *Sink) WriteField(v downdrag.Value) error {
	s.row = append(s.row, v.Fixed())
	return nil
}

func (s *Sink) EndRecord(context.Context) error {
	if err := s.w.Write(s.row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Close flushes pending output and commits the file.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	file := s.file
	s.file = nil
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = file.Abort()
		return err
	}
	return file.Commit()
}
