package crawl

import (
	"context"
	"net/url"
	"sync"

	"github.com/CodeBeast357/downdrag"
	"golang.org/x/time/rate"
)

var _ downdrag.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Each domain gets its own limiter with a burst of 1.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter allowing rps requests per
// second to each domain.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

var _ downdrag.Fetcher = (*LimitedFetcher)(nil)

// LimitedFetcher waits on a DomainLimiter for the URL's host before every
// fetch.
type LimitedFetcher struct {
	Fetcher downdrag.Fetcher
	Limiter downdrag.DomainLimiter
}

func (l *LimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", downdrag.Errorf(downdrag.EINVALID, "invalid url %q", rawURL)
	}
	if err := l.Limiter.Wait(ctx, u.Host); err != nil {
		return "", err
	}
	return l.Fetcher.Fetch(ctx, rawURL)
}

func (l *LimitedFetcher) Close() error {
	return l.Fetcher.Close()
}
