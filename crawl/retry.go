package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/CodeBeast357/downdrag"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries.
func DefaultRetryDelays(retries int) []time.Duration {
	delays := make([]time.Duration, retries)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// FetchWithRetryDelays calls fetch until it succeeds, waiting delays[i]
// before retry i+1. Not-found and invalid errors are final.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		content, err := fetch(ctx, url)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt == len(delays) || !retryable(err) {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if logger != nil {
			logger.Warn("retry", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return "", lastErr
}

func retryable(err error) bool {
	switch downdrag.ErrorCode(err) {
	case downdrag.ENOTFOUND, downdrag.EINVALID:
		return false
	}
	return true
}

var _ downdrag.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries failed fetches of the wrapped Fetcher.
type RetryFetcher struct {
	Fetcher downdrag.Fetcher
	Delays  []time.Duration
	Logger  *slog.Logger
}

// NewRetryFetcher wraps f with the given number of retries.
func NewRetryFetcher(f downdrag.Fetcher, retries int, logger *slog.Logger) *RetryFetcher {
	return &RetryFetcher{Fetcher: f, Delays: DefaultRetryDelays(retries), Logger: logger}
}

func (r *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return FetchWithRetryDelays(ctx, url, r.Fetcher.Fetch, r.Logger, r.Delays)
}

func (r *RetryFetcher) Close() error {
	return r.Fetcher.Close()
}
