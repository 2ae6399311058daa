package htmltomarkdown

import (
	"bytes"
	"context"
	"io"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/fs"
	"github.com/CodeBeast357/downdrag/html"
)

// Ensure Sink implements downdrag.Sink at compile time.
var _ downdrag.Sink = (*Sink)(nil)

// Sink writes records as a Markdown table. Records are rendered into an
// HTML table in memory and converted when the sink is closed.
type Sink struct {
	path string
	conv *Converter

	buf   bytes.Buffer
	table *html.Sink
}

// NewSink returns a sink writing the Markdown table to path.
func NewSink(path string, conv *Converter) *Sink {
	return &Sink{path: path, conv: conv}
}

func (s *Sink) Open(ctx context.Context, fields []downdrag.Field) error {
	s.buf.Reset()
	s.table = html.NewWriterSink(&s.buf)
	return s.table.Open(ctx, fields)
}

func (s *Sink) BeginRecord(index int) error { return s.table.BeginRecord(index) }

func (s *Sink) WriteField(v downdrag.Value) error { return s.table.WriteField(v) }

func (s *Sink) EndRecord(ctx context.Context) error { return s.table.EndRecord(ctx) }

// Close converts the table and commits the file.
func (s *Sink) Close() error {
	if s.table == nil {
		return nil
	}
	if err := s.table.Close(); err != nil {
		return err
	}
	s.table = nil

	md, err := s.conv.Convert(s.buf.String())
	if err != nil {
		return err
	}
	file, err := fs.Create(s.path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(file, md+"\n"); err != nil {
		_ = file.Abort()
		return err
	}
	return file.Commit()
}
