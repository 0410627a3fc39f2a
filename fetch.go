package toast

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"
)

// HTTPFetcher fetches resources over HTTP relative to BaseURL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client // http.DefaultClient when nil
}

// Fetch issues a GET for BaseURL joined with path.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (*Response, error) {
	url := path
	if f.BaseURL != "" {
		url = strings.TrimSuffix(f.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Body: string(body)}, nil
}

// FSFetcher reads resources from a file system. Paths are resolved relative
// to the root of FS; a leading slash or "./" is ignored.
type FSFetcher struct {
	FS fs.FS
}

// Fetch reads the file at path. A missing file is reported as a 404 response.
func (f *FSFetcher) Fetch(ctx context.Context, path string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(strings.TrimPrefix(path, "./"), "/")
	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Response{Status: http.StatusNotFound}, nil
		}
		return nil, err
	}
	return &Response{Status: http.StatusOK, Body: string(data)}, nil
}
