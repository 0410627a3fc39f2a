package toast

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// MapFetcher is an in-memory Fetcher for tests.
//
// Paths present in Files are served with status 200. Status overrides the
// response status of a path and Errors makes a path fail with a transport
// error. Every call is counted, whatever its outcome.
//
//	f := toast.NewMapFetcher(map[string]string{
//	    "card/card.html": "<p>hi</p>",
//	})
//	rt := toast.New(toast.WithFetcher(f))
type MapFetcher struct {
	mu     sync.Mutex
	Files  map[string]string
	Status map[string]int
	Errors map[string]error
	calls  map[string]int

	// Gate, when set, is waited on before every fetch completes.
	Gate <-chan struct{}
}

// NewMapFetcher creates a fetcher serving files.
func NewMapFetcher(files map[string]string) *MapFetcher {
	return &MapFetcher{
		Files:  files,
		Status: make(map[string]int),
		Errors: make(map[string]error),
		calls:  make(map[string]int),
	}
}

// Fetch serves path from Files.
func (f *MapFetcher) Fetch(ctx context.Context, path string) (*Response, error) {
	f.mu.Lock()
	f.calls[path]++
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Errors[path]; ok {
		return nil, err
	}
	body, ok := f.Files[path]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	if s, ok := f.Status[path]; ok {
		status = s
	}
	return &Response{Status: status, Body: body}, nil
}

// Calls returns how many times path was fetched.
func (f *MapFetcher) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// TotalCalls returns the number of fetches across all paths.
func (f *MapFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// TestResult holds the outcome of rendering a single element for testing.
type TestResult struct {
	ID         string
	HTML       string
	Attributes Attributes
	Err        error
}

// TestRender creates, attaches and waits for one instance of tag and returns
// its rendered content. Use this for unit tests of a component's template,
// stylesheet and scripts:
//
//	result, err := toast.TestRender(ctx, rt, "x-card", map[string]string{"title": "Hi"})
//	if !result.HTMLContains("Hi") {
//	    t.Fatal("missing title")
//	}
//
// The returned error reports a problem creating or waiting for the element.
// Render failures are in TestResult.Err, just as a real attach never fails.
func TestRender(ctx context.Context, rt *Runtime, tag string, attrs map[string]string) (*TestResult, error) {
	e, err := rt.NewElement(tag, attrs)
	if err != nil {
		return nil, err
	}
	e.Attach(ctx)

	select {
	case <-e.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	content, err := e.HTML()
	if err != nil {
		return nil, err
	}
	coerced, err := e.Attributes()
	if err != nil {
		return nil, err
	}
	return &TestResult{
		ID:         e.ID(),
		HTML:       content,
		Attributes: coerced,
		Err:        e.Err(),
	}, nil
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLNotContains checks if the HTML does not contain a substring.
func (r *TestResult) HTMLNotContains(substr string) bool {
	return !strings.Contains(r.HTML, substr)
}
