// Package rod provides browser-automation implementations of
// downdrag.Fetcher and downdrag.Clicker for listings rendered with
// JavaScript or paginated through in-page actions.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout is the default timeout for a single page fetch.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxClicks bounds the number of actions ClickThrough performs.
const DefaultMaxClicks = 100

// Ensure Fetcher implements downdrag.Fetcher and downdrag.Clicker at
// compile time.
var (
	_ downdrag.Fetcher = (*Fetcher)(nil)
	_ downdrag.Clicker = (*Fetcher)(nil)
)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager     *BrowserManager
	managerOpts []ManagerOption
	timeout     time.Duration
	maxClicks   int
	settle      time.Duration
	closed      atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for a single fetch.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxClicks bounds the number of actions ClickThrough performs.
func WithMaxClicks(n int) Option {
	return func(f *Fetcher) {
		f.maxClicks = n
	}
}

// WithBrowser configures the browser the fetcher launches.
func WithBrowser(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		maxClicks: DefaultMaxClicks,
		settle:    time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", downdrag.Errorf(downdrag.EINVALID, "fetcher closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.open(ctx, url)
	if err != nil {
		return "", err
	}
	defer page.Close()

	return page.HTML()
}

// ClickThrough loads url, then performs action on the element matching the
// XPath query until no such element remains, and returns the final HTML.
// Only the "click" action is supported.
func (f *Fetcher) ClickThrough(ctx context.Context, url, action, query string) (string, error) {
	if f.closed.Load() {
		return "", downdrag.Errorf(downdrag.EINVALID, "fetcher closed")
	}
	if action != "click" {
		return "", downdrag.Errorf(downdrag.EINVALID, "unsupported pager action %q", action)
	}

	page, err := f.open(ctx, url)
	if err != nil {
		return "", err
	}
	defer page.Close()

	for i := 0; i < f.maxClicks; i++ {
		has, el, err := page.HasX(query)
		if err != nil {
			return "", err
		}
		if !has {
			break
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return "", err
		}
		if err := page.WaitIdle(f.settle); err != nil {
			return "", err
		}
	}
	return page.HTML()
}

func (f *Fetcher) open(ctx context.Context, url string) (*rod.Page, error) {
	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	f.manager.IncrementPageCount()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		_ = page.Close()
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, err
	}
	return page, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
