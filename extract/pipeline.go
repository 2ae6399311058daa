package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CodeBeast357/downdrag"
)

// Pipeline runs a Program: it walks the listing pages of every profile in
// order and writes one record per successfully processed item to a sink.
// Processing is sequential and preserves listing order.
type Pipeline struct {
	Program   *Program
	Documents *Documents
	Paginator downdrag.Paginator

	// Listing holds parsers for profiles whose listing syntax differs from
	// the detail page syntax.
	Listing map[downdrag.Syntax]downdrag.Parser

	Logger *slog.Logger
}

// Result summarizes a run.
type Result struct {
	Written int
	Skipped int
}

// Run processes every profile and writes records to sink. Retrieval and item
// failures are logged and skipped; sink failures and cancellation end the
// run. sink is opened with the program's fields and always closed.
func (p *Pipeline) Run(ctx context.Context, sink downdrag.Sink) (res Result, err error) {
	logger := p.logger()
	if err := sink.Open(ctx, p.Program.Fields); err != nil {
		return res, fmt.Errorf("open sink: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close sink: %w", cerr)
		}
	}()

	for _, prof := range p.Program.Profiles {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		logger.Info("target", "source", prof.Source())

		index := 0
		var writeErr error
		walkErr := p.Paginator.Walk(ctx, prof.Config, p.listingParser(prof), func(page *downdrag.Page) error {
			logger.Info("pager", "source", prof.Source(), "url", page.URL)
			nodes, err := page.Query(prof.Config.Items)
			if err != nil {
				logger.Error("target error", "source", prof.Source(), "url", page.URL, "err", err)
				return nil
			}
			for _, node := range nodes {
				if err := ctx.Err(); err != nil {
					return err
				}
				item := downdrag.SourceItem{Source: prof.Source(), Index: index, Node: node, Page: page}
				index++

				logger.Info("item handling", "source", item.Source, "index", item.Index)
				rec, err := p.Record(ctx, prof, item)
				if err != nil {
					logger.Error("item error", "source", item.Source, "index", item.Index, "err", err)
					res.Skipped++
					continue
				}
				p.Details(rec)

				if err := downdrag.WriteRecord(ctx, sink, res.Written, rec); err != nil {
					writeErr = err
					return err
				}
				res.Written++
			}
			return nil
		})
		if writeErr != nil {
			return res, fmt.Errorf("write record: %w", writeErr)
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if walkErr != nil {
			logger.Error("target error", "source", prof.Source(), "err", walkErr)
		}
	}
	return res, nil
}

func (p *Pipeline) listingParser(prof *Profile) downdrag.Parser {
	if s := prof.Config.ListingSyntax; s != "" {
		if parser, ok := p.Listing[s]; ok {
			return parser
		}
	}
	return p.Documents.Parser
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
