package toast

import (
	"context"
)

// Response is the result of fetching a resource path.
type Response struct {
	Status int
	Body   string
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Fetcher retrieves the text of a resource path.
//
// A returned error is a transport failure. A response with a non-2xx status
// is a completed fetch that did not succeed; the Loader treats both as a
// ResourceFetchError.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, path string) (*Response, error)

// Fetch calls f(ctx, path).
func (f FetcherFunc) Fetch(ctx context.Context, path string) (*Response, error) {
	return f(ctx, path)
}

// Loader fetches resource text through a Fetcher and memoizes successful
// results in a Cache.
//
// Two loads of the same uncached path that overlap in time may both reach
// the Fetcher. The cache keeps whichever result was stored first and both
// callers receive the fetched text.
type Loader struct {
	fetcher Fetcher
	cache   *Cache
}

// NewLoader creates a loader. A nil cache gets a private one.
func NewLoader(fetcher Fetcher, cache *Cache) *Loader {
	if cache == nil {
		cache = NewCache()
	}
	return &Loader{fetcher: fetcher, cache: cache}
}

// Cache returns the loader's cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load returns the text for path. An empty path yields empty text without
// any I/O. Failures are returned as *ResourceFetchError and are not cached.
func (l *Loader) Load(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if text, ok := l.cache.Get(path); ok {
		return text, nil
	}

	resp, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return "", &ResourceFetchError{Path: path, Cause: err}
	}
	if !resp.OK() {
		status := 0
		if resp != nil {
			status = resp.Status
		}
		return "", &ResourceFetchError{Path: path, Status: status}
	}

	l.cache.Store(path, resp.Body)
	return resp.Body, nil
}
