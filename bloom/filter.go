// Package bloom provides URL deduplication using Bloom filters.
package bloom

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter remembers visited URLs in a Bloom filter.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Visit adds the URL and reports whether it was new. URLs differing only
// by fragment are the same page. A false positive reports a new URL as
// already visited; a visited URL is never reported as new.
func (f *Filter) Visit(url string) bool {
	return !f.f.TestAndAddString(normalize(url))
}

func normalize(url string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		return url[:i]
	}
	return url
}
