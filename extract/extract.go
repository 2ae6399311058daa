// Package extract implements the extraction pipeline: it walks the listing
// pages of every profile, builds one record per listing item, resolves the
// item's extrainfo and computes the configured details.
//
// Configuration is compiled once per run into a Program. Compilation is where
// configuration errors surface; at run time every failure degrades to default
// values or, at worst, skips a single item.
package extract

import (
	"context"
	"fmt"

	"github.com/CodeBeast357/downdrag"
)

// Documents retrieves and parses pages.
type Documents struct {
	Fetcher downdrag.Fetcher
	Parser  downdrag.Parser
}

// Get fetches url and parses the result.
func (d *Documents) Get(ctx context.Context, url string) (*downdrag.Page, error) {
	content, err := d.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	page, err := d.Parser.Parse(url, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return page, nil
}
