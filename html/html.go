// Package html implements a downdrag.Sink rendering records as an HTML
// table.
package html

import (
	"context"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/fs"
)

var page = template.Must(template.New("page").Funcs(template.FuncMap{
	"lines": lines,
}).Parse(`{{define "head"}}<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />{{with .Title}}
    <title>{{.}}</title>{{end}}{{range .Scripts}}
    <script src="{{.}}"></script>{{end}}{{range .Styles}}
    <link rel="stylesheet" type="text/css" href="{{.}}" />{{end}}
  </head>
  <body>
    <table id="data">
      <thead>
        <tr>{{range .Fields}}
          <th>{{.}}</th>{{end}}
        </tr>
      </thead>
      <tbody>{{end}}
{{define "row"}}
        <tr>{{range .}}
          <td>{{lines .}}</td>{{end}}
        </tr>{{end}}
{{define "foot"}}
      </tbody>
    </table>
  </body>
</html>
{{end}}`))

// lines escapes s and renders its newlines as line breaks.
func lines(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br/>"))
}

// Option configures a Sink.
type Option func(*Sink)

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(s *Sink) { s.title = title }
}

// WithScripts adds script URLs to the document head.
func WithScripts(urls ...string) Option {
	return func(s *Sink) { s.scripts = append(s.scripts, urls...) }
}

// WithStyles adds stylesheet URLs to the document head.
func WithStyles(urls ...string) Option {
	return func(s *Sink) { s.styles = append(s.styles, urls...) }
}

// Ensure Sink implements downdrag.Sink at compile time.
var _ downdrag.Sink = (*Sink)(nil)

// Sink streams an HTML document holding one table row per record.
type Sink struct {
	title   string
	scripts []string
	styles  []string

	path string
	file *fs.File
	w    io.Writer
	row  []string
}

// NewSink returns a sink writing the document to the file at path. The file
// appears at its final path on Close.
func NewSink(path string, opts ...Option) *Sink {
	s := &Sink{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWriterSink returns a sink writing the document to w.
func NewWriterSink(w io.Writer, opts ...Option) *Sink {
	s := &Sink{w: w}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Open(_ context.Context, fields []downdrag.Field) error {
	if s.path != "" {
		file, err := fs.Create(s.path)
		if err != nil {
			return err
		}
		s.file, s.w = file, file
	}
	err := page.ExecuteTemplate(s.w, "head", struct {
		Title   string
		Scripts []string
		Styles  []string
		Fields  []string
	}{s.title, s.scripts, s.styles, downdrag.FieldNames(fields)})
	if err != nil && s.file != nil {
		_ = s.file.Abort()
		s.file = nil
	}
	return err
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
	return page.ExecuteTemplate(s.w, "row", s.row)
}

// Close ends the document and commits the file.
func (s *Sink) Close() error {
	if s.w == nil {
		return nil
	}
	err := page.ExecuteTemplate(s.w, "foot", nil)
	s.w = nil
	if s.file == nil {
		return err
	}
	file := s.file
	s.file = nil
	if err != nil {
		_ = file.Abort()
		return err
	}
	return file.Commit()
}
