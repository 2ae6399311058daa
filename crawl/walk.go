// Package crawl retrieves listing pages: pagination, retries and per-domain
// rate limiting around a downdrag.Fetcher.
package crawl

import (
	"context"
	"fmt"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/bloom"
)

// DefaultMaxPages bounds a single profile's pagination.
const DefaultMaxPages = 1000

var _ downdrag.Paginator = (*Walker)(nil)

// Walker follows a profile's pagers from its listing URL.
//
// Query pagers are evaluated against each page; the first result's link,
// rebased against the page URL, is the next page. The walk ends when the
// query matches nothing, yields an empty link or revisits a page.
//
// Dynamic pagers need a Clicker: the listing is rendered once after clicking
// through every page and handed to fn as a single page. Without a Clicker
// only the first page is visited.
type Walker struct {
	Fetcher downdrag.Fetcher
	Clicker downdrag.Clicker

	// MaxPages bounds the number of pages visited per profile. Zero means
	// DefaultMaxPages.
	MaxPages int
}

// Walk implements downdrag.Paginator.
func (w *Walker) Walk(ctx context.Context, profile *downdrag.Profile, parser downdrag.Parser, fn func(*downdrag.Page) error) error {
	if profile.Pagers.Dynamic() && w.Clicker != nil {
		content, err := w.Clicker.ClickThrough(ctx, profile.URL, profile.Pagers.Action, profile.Pagers.Value)
		if err != nil {
			return fmt.Errorf("click through %s: %w", profile.URL, err)
		}
		page, err := parser.Parse(profile.URL, content)
		if err != nil {
			return fmt.Errorf("parse %s: %w", profile.URL, err)
		}
		return fn(page)
	}

	maxPages := w.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	seen := bloom.NewFilter(uint(maxPages), 0.001)

	next := profile.URL
	for visited := 0; next != "" && visited < maxPages && seen.Visit(next); visited++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := w.Fetcher.Fetch(ctx, next)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", next, err)
		}
		page, err := parser.Parse(next, content)
		if err != nil {
			return fmt.Errorf("parse %s: %w", next, err)
		}
		if err := fn(page); err != nil {
			return err
		}
		if profile.Pagers.Dynamic() {
			return nil
		}
		next, err = nextPage(page, profile.Pagers.Query)
		if err != nil {
			return err
		}
	}
	return nil
}

func nextPage(page *downdrag.Page, query string) (string, error) {
	if query == "" {
		return "", nil
	}
	nodes, err := page.Query(query)
	if err != nil {
		return "", fmt.Errorf("pagers query: %w", err)
	}
	if len(nodes) == 0 {
		return "", nil
	}
	link := downdrag.Link(nodes[0])
	if link == "" {
		return "", nil
	}
	return page.RebaseLink(link), nil
}
