package bloom_test

import (
	"fmt"
	"testing"

	"github.com/CodeBeast357/downdrag/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Visit(t *testing.T) {
	t.Parallel()

	t.Run("reports first visits only", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)

		assert.True(t, f.Visit("https://example.com/list?page=2"))
		assert.False(t, f.Visit("https://example.com/list?page=2"))
		assert.True(t, f.Visit("https://example.com/list?page=3"))
	})

	t.Run("ignores fragments", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)

		assert.True(t, f.Visit("https://example.com/list#top"))
		assert.False(t, f.Visit("https://example.com/list"))
		assert.False(t, f.Visit("https://example.com/list#bottom"))
	})

	t.Run("keeps the false positive rate near the estimate", func(t *testing.T) {
		t.Parallel()

		// Sized for both loops: every Visit adds its URL.
		const pages = 10000
		f := bloom.NewFilter(2*pages, 0.01)
		for i := range pages {
			f.Visit(fmt.Sprintf("https://example.com/list?page=%d", i))
		}

		seen := 0
		for i := range pages {
			if !f.Visit(fmt.Sprintf("https://example.com/other?page=%d", i)) {
				seen++
			}
		}

		// Allow twice the configured rate for statistical variance.
		rate := float64(seen) / pages
		assert.Less(t, rate, 0.02, "false positive rate %f", rate)
	})
}
