package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodeBeast357/downdrag"
)

// Record builds the main fields of item: it follows the item's link to its
// detail page, reads the name and description there and resolves extrainfo.
// Details are not computed.
func (p *Pipeline) Record(ctx context.Context, prof *Profile, item downdrag.SourceItem) (*downdrag.Record, error) {
	links, err := item.Node.Query(prof.LinkQuery)
	if err != nil {
		return nil, fmt.Errorf("link query: %w", err)
	}
	if len(links) == 0 {
		return nil, downdrag.Errorf(downdrag.ENOTFOUND, "no link for query %q", prof.LinkQuery)
	}
	link := downdrag.Link(links[0])
	if item.Page != nil {
		link = item.Page.RebaseLink(link)
	}

	page, err := p.Documents.Get(ctx, link)
	if err != nil {
		return nil, err
	}

	name, err := itemName(page, prof.Config.Name)
	if err != nil {
		return nil, err
	}
	description, err := describe(page, prof)
	if err != nil {
		return nil, err
	}

	resolver := Resolver{Documents: p.Documents}
	extrainfo, err := resolver.Resolve(ctx, prof.Pathfinder, item, page, name)
	if err != nil {
		return nil, fmt.Errorf("pathfinder: %w", err)
	}

	return &downdrag.Record{
		Source:      item.Source,
		Index:       item.Index,
		Name:        name,
		Description: description,
		Extrainfo:   extrainfo,
		Link:        link,
	}, nil
}

// itemName returns the first word of the first result of query.
func itemName(page *downdrag.Page, query string) (string, error) {
	nodes, err := page.Query(query)
	if err != nil {
		return "", fmt.Errorf("name query: %w", err)
	}
	if len(nodes) == 0 {
		return "", downdrag.Errorf(downdrag.ENOTFOUND, "no name for query %q", query)
	}
	words := strings.Fields(nodes[0].Text())
	if len(words) == 0 {
		return "", downdrag.Errorf(downdrag.ENOTFOUND, "empty name for query %q", query)
	}
	return words[0], nil
}

// describe joins the first evaluator group of every matching feature with
// commas. Dashes inside a value become commas.
func describe(page *downdrag.Page, prof *Profile) (string, error) {
	nodes, err := page.Query(prof.Config.Features)
	if err != nil {
		return "", fmt.Errorf("features query: %w", err)
	}
	var values []string
	for _, n := range nodes {
		groups, ok, err := prof.Evaluator.Search(n.Text())
		if err != nil {
			return "", fmt.Errorf("evaluator: %w", err)
		}
		if !ok {
			continue
		}
		v := strings.TrimSpace(strings.ReplaceAll(groups[0], "-", ","))
		if v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, ","), nil
}

// Details computes every configured detail of rec in order.
func (p *Pipeline) Details(rec *downdrag.Record) {
	conv := Converter{Rules: p.Program.Rules, Logger: p.logger()}
	layered := make(map[string]downdrag.Value, len(p.Program.Details))
	rec.Details = rec.Details[:0]
	for _, d := range p.Program.Details {
		out, err := conv.Convert(d, rec, layered)
		if err != nil {
			p.logger().Warn("detail error", "source", rec.Source, "index", rec.Index, "detail", d.Name, "err", err)
		}
		rec.Details = append(rec.Details, out)
		if !out.Pair && !out.Value.IsEmpty() {
			layered[d.Name] = out.Value
		}
	}
}
