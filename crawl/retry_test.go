package crawl_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/crawl"
	"github.com/CodeBeast357/downdrag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDelays is used for fast unit tests.
var noDelays = []time.Duration{0, 0, 0}

func TestFetchWithRetryDelays(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(context.Context, string) (string, error) {
			attempts++
			return "<html>content</html>", nil
		}

		html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries on failure and succeeds", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(context.Context, string) (string, error) {
			attempts++
			if attempts < 4 {
				return "", errors.New("transient error")
			}
			return "<html>success</html>", nil
		}

		html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>success</html>", html)
		assert.Equal(t, 4, attempts)
	})

	t.Run("returns last error after max retries", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(context.Context, string) (string, error) {
			attempts++
			return "", errors.New("persistent error")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "persistent error")
		assert.Equal(t, 4, attempts)
	})

	t.Run("does not retry not found", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(context.Context, string) (string, error) {
			attempts++
			return "", downdrag.Errorf(downdrag.ENOTFOUND, "page not found")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		assert.Equal(t, downdrag.ENOTFOUND, downdrag.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var attempts int
		fetch := func(context.Context, string) (string, error) {
			attempts++
			cancel()
			return "", errors.New("transient error")
		}

		_, err := crawl.FetchWithRetryDelays(ctx, "https://example.com", fetch, nil, noDelays)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("logs each retry", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(context.Context, string) (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("transient error")
			}
			return "ok", nil
		}
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com/page", fetch, logger, noDelays)

		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(buf.String(), "msg=retry"))
		assert.Contains(t, buf.String(), "url=https://example.com/page")
	})
}

func TestDefaultRetryDelays(t *testing.T) {
	t.Parallel()

	assert.Empty(t, crawl.DefaultRetryDelays(0))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, crawl.DefaultRetryDelays(3))
}

func TestRetryFetcher(t *testing.T) {
	t.Parallel()

	var attempts, closes int
	f := &crawl.RetryFetcher{
		Fetcher: &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				attempts++
				if attempts == 1 {
					return "", errors.New("connection reset")
				}
				return "content", nil
			},
			CloseFn: func() error {
				closes++
				return nil
			},
		},
		Delays: []time.Duration{0},
	}

	got, err := f.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "content", got)
	assert.Equal(t, 2, attempts)

	require.NoError(t, f.Close())
	assert.Equal(t, 1, closes)
}
