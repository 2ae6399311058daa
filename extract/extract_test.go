package extract_test

import (
	"context"
	"testing"
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/extract"
	"github.com/CodeBeast357/downdrag/htmlquery"
	"github.com/CodeBeast357/downdrag/mock"
	"github.com/CodeBeast357/downdrag/regexp2"
	"github.com/CodeBeast357/downdrag/strftime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wednesday is the reference "now" of most tests.
var wednesday = time.Date(2026, 10, 14, 19, 30, 0, 0, time.UTC)

func newCompiler() *extract.Compiler {
	return &extract.Compiler{
		Patterns: regexp2.NewCompiler(),
		Times:    strftime.NewFormatter(),
	}
}

// site returns a fetcher serving pages by URL; unknown URLs are not found.
func site(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			content, ok := pages[url]
			if !ok {
				return "", downdrag.Errorf(downdrag.ENOTFOUND, "no page %s", url)
			}
			return content, nil
		},
		CloseFn: func() error { return nil },
	}
}

func documents(pages map[string]string) *extract.Documents {
	return &extract.Documents{Fetcher: site(pages), Parser: htmlquery.NewParser()}
}

func parse(t *testing.T, url, content string) *downdrag.Page {
	t.Helper()
	page, err := htmlquery.NewParser().Parse(url, content)
	require.NoError(t, err)
	return page
}

func TestDocuments_Get(t *testing.T) {
	t.Parallel()

	t.Run("fetches and parses", func(t *testing.T) {
		t.Parallel()

		docs := documents(map[string]string{"https://example.com/a": "<h1>Bar</h1>"})

		page, err := docs.Get(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", page.URL)
		nodes, err := page.Query("//h1")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "Bar", nodes[0].Text())
	})

	t.Run("wraps fetch errors", func(t *testing.T) {
		t.Parallel()

		_, err := documents(nil).Get(context.Background(), "https://example.com/missing")

		assert.Equal(t, downdrag.ENOTFOUND, downdrag.ErrorCode(err))
		assert.Contains(t, err.Error(), "https://example.com/missing")
	})

	t.Run("wraps parse errors", func(t *testing.T) {
		t.Parallel()

		docs := &extract.Documents{
			Fetcher: site(map[string]string{"https://example.com/feed": "<rss"}),
			Parser: &mock.Parser{
				ParseFn: func(string, string) (*downdrag.Page, error) {
					return nil, downdrag.Errorf(downdrag.EINVALID, "unexpected EOF")
				},
			},
		}

		_, err := docs.Get(context.Background(), "https://example.com/feed")

		assert.ErrorContains(t, err, "parse https://example.com/feed")
	})
}
