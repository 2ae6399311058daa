// Package lru provides an in-memory cache of fetched documents backed by
// hashicorp/golang-lru.
package lru

import (
	"context"
	"strconv"

	"github.com/CodeBeast357/downdrag"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the number of documents cached when no size is given.
const DefaultSize = 256

// Ensure Fetcher implements downdrag.Fetcher at compile time.
var _ downdrag.Fetcher = (*Fetcher)(nil)

// Fetcher caches the documents retrieved by another Fetcher. Concurrent
// fetches of the same URL share one underlying request. Failures are not
// cached.
type Fetcher struct {
	next  downdrag.Fetcher
	cache *lru.Cache[uint64, string]
	group singleflight.Group
}

// NewFetcher wraps next with a cache holding up to size documents.
func NewFetcher(next downdrag.Fetcher, size int) (*Fetcher, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[uint64, string](size)
	if err != nil {
		return nil, err
	}
	return &Fetcher{next: next, cache: cache}, nil
}

// Fetch returns the cached document for url, fetching it on a miss.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	key := xxhash.Sum64String(url)
	if content, ok := f.cache.Get(key); ok {
		return content, nil
	}
	v, err, _ := f.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		content, err := f.next.Fetch(ctx, url)
		if err != nil {
			return "", err
		}
		f.cache.Add(key, content)
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns the number of cached documents.
func (f *Fetcher) Len() int {
	return f.cache.Len()
}

// Close purges the cache and closes the wrapped fetcher.
func (f *Fetcher) Close() error {
	f.cache.Purge()
	return f.next.Close()
}
