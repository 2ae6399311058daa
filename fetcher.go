package downdrag

import "context"

// Fetcher retrieves document content from URLs.
// Implementations may use plain HTTP, a SOCKS proxy or browser automation.
type Fetcher interface {
	// Fetch retrieves the content at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (content string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Clicker renders a page in a live browser after repeatedly performing an
// action on the element matched by an XPath query, until the element is
// gone. It returns the final HTML.
type Clicker interface {
	ClickThrough(ctx context.Context, url, action, query string) (content string, err error)
}

// Paginator walks the listing pages of a profile, calling fn for each page
// in order. Errors returned by fn stop the walk and are returned as is.
type Paginator interface {
	Walk(ctx context.Context, profile *Profile, parser Parser, fn func(*Page) error) error
}

// DomainLimiter rate limits requests per domain.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed.
	Wait(ctx context.Context, domain string) error
}
