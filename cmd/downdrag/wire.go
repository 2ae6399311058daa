package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/crawl"
	"github.com/CodeBeast357/downdrag/csv"
	"github.com/CodeBeast357/downdrag/etree"
	"github.com/CodeBeast357/downdrag/extract"
	"github.com/CodeBeast357/downdrag/goquery"
	"github.com/CodeBeast357/downdrag/html"
	"github.com/CodeBeast357/downdrag/htmlquery"
	"github.com/CodeBeast357/downdrag/htmltomarkdown"
	ddhttp "github.com/CodeBeast357/downdrag/http"
	"github.com/CodeBeast357/downdrag/lru"
	"github.com/CodeBeast357/downdrag/mysql"
	"github.com/CodeBeast357/downdrag/regexp2"
	"github.com/CodeBeast357/downdrag/rod"
	ddslog "github.com/CodeBeast357/downdrag/slog"
	"github.com/CodeBeast357/downdrag/sqlite"
	"github.com/CodeBeast357/downdrag/strftime"
)

func compiler() *extract.Compiler {
	return &extract.Compiler{
		Patterns: regexp2.NewCompiler(),
		Times:    strftime.NewFormatter(),
	}
}

func parsers() map[downdrag.Syntax]downdrag.Parser {
	return map[downdrag.Syntax]downdrag.Parser{
		downdrag.SyntaxXPath: htmlquery.NewParser(),
		downdrag.SyntaxCSS:   goquery.NewParser(),
		downdrag.SyntaxXML:   etree.NewParser(),
	}
}

// wire builds the pipeline and sink of a run.
func (m *Main) wire(cfg *downdrag.Config, now time.Time, logger *slog.Logger) (*extract.Pipeline, downdrag.Sink, error) {
	prog, err := compiler().Compile(cfg, now)
	if err != nil {
		return nil, nil, err
	}

	fetcher, clicker, err := newFetcher(cfg.Querier, logger)
	if err != nil {
		return nil, nil, err
	}
	m.closers = append(m.closers, fetcher)

	listing := parsers()
	documents := &extract.Documents{Fetcher: fetcher, Parser: listing[prog.Syntax]}
	pipeline := &extract.Pipeline{
		Program:   prog,
		Documents: documents,
		Paginator: &crawl.Walker{Fetcher: fetcher, Clicker: clicker},
		Listing:   listing,
		Logger:    logger,
	}

	sink, err := newSink(cfg.Outputs, logger)
	if err != nil {
		return nil, nil, err
	}
	return pipeline, sink, nil
}

// newFetcher builds the querier chain: the mode's fetcher, rate limited,
// retried, logged and optionally cached. Only dynamic mode can click.
func newFetcher(q downdrag.Querier, logger *slog.Logger) (downdrag.Fetcher, downdrag.Clicker, error) {
	var (
		fetcher downdrag.Fetcher
		clicker downdrag.Clicker
	)
	switch q.Mode {
	case "", downdrag.ModePlain, downdrag.ModeSecure:
		var opts []ddhttp.Option
		if q.Timeout > 0 {
			opts = append(opts, ddhttp.WithTimeout(q.Timeout))
		}
		if q.Mode == downdrag.ModeSecure {
			proxy := q.Proxy
			if proxy == "" {
				proxy = ddhttp.DefaultProxy
			}
			opts = append(opts, ddhttp.WithProxy(proxy))
		}
		fetcher = ddhttp.NewFetcher(opts...)
	case downdrag.ModeDynamic:
		var browser []rod.ManagerOption
		if q.Driver != "" {
			browser = append(browser, rod.WithBin(q.Driver))
		}
		if q.Argsline != "" {
			browser = append(browser, rod.WithFlags(rod.ParseFlags(q.Argsline)...))
		}
		opts := []rod.Option{rod.WithBrowser(browser...)}
		if q.Timeout > 0 {
			opts = append(opts, rod.WithFetchTimeout(q.Timeout))
		}
		f, err := rod.NewFetcher(opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
		clicker = ddslog.NewLoggingClicker(f, logger)
	default:
		return nil, nil, downdrag.Errorf(downdrag.EINVALID, "unknown querier mode %q", string(q.Mode))
	}

	if q.Rate > 0 {
		fetcher = &crawl.LimitedFetcher{Fetcher: fetcher, Limiter: crawl.NewDomainLimiter(q.Rate)}
	}
	if q.Retries > 0 {
		fetcher = crawl.NewRetryFetcher(fetcher, q.Retries, logger)
	}
	fetcher = ddslog.NewLoggingFetcher(fetcher, logger)
	if q.Cached {
		cached, err := lru.NewFetcher(fetcher, q.CacheSize)
		if err != nil {
			fetcher.Close()
			return nil, nil, err
		}
		fetcher = cached
	}
	return fetcher, clicker, nil
}

// newSink builds one logged sink per output, fanned out when there are
// several.
func newSink(outputs []downdrag.Output, logger *slog.Logger) (downdrag.Sink, error) {
	sinks := make([]downdrag.Sink, 0, len(outputs))
	for _, o := range outputs {
		var s downdrag.Sink
		switch o.Kind {
		case downdrag.OutputCSV:
			s = csv.NewSink(o.Filename)
		case downdrag.OutputHTML:
			s = html.NewSink(o.Filename,
				html.WithTitle(o.Title),
				html.WithScripts(o.Scripts...),
				html.WithStyles(o.Styles...),
			)
		case downdrag.OutputMarkdown:
			s = htmltomarkdown.NewSink(o.Filename, htmltomarkdown.NewConverter())
		case downdrag.OutputSQLite:
			s = sqlite.NewSink(o.Path, o.Table, o.Create)
		case downdrag.OutputMySQL:
			s = mysql.NewSink(o.Connection, o.Table, o.Create)
		default:
			return nil, downdrag.Errorf(downdrag.EINVALID, "unknown output %q", string(o.Kind))
		}
		sinks = append(sinks, ddslog.NewLoggingSink(s, string(o.Kind), logger))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return downdrag.NewMultiSink(sinks...), nil
}
