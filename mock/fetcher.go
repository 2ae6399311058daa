package mock

import (
	"context"

	"github.com/CodeBeast357/downdrag"
)

var _ downdrag.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of downdrag.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ downdrag.Clicker = (*Clicker)(nil)

// Clicker is a mock implementation of downdrag.Clicker.
type Clicker struct {
	ClickThroughFn func(ctx context.Context, url, action, query string) (string, error)
}

func (c *Clicker) ClickThrough(ctx context.Context, url, action, query string) (string, error) {
	return c.ClickThroughFn(ctx, url, action, query)
}

var _ downdrag.Paginator = (*Paginator)(nil)

// Paginator is a mock implementation of downdrag.Paginator.
type Paginator struct {
	WalkFn func(ctx context.Context, profile *downdrag.Profile, parser downdrag.Parser, fn func(*downdrag.Page) error) error
}

func (p *Paginator) Walk(ctx context.Context, profile *downdrag.Profile, parser downdrag.Parser, fn func(*downdrag.Page) error) error {
	return p.WalkFn(ctx, profile, parser, fn)
}

var _ downdrag.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of downdrag.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.WaitFn(ctx, domain)
}
