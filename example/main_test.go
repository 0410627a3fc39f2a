package main

import (
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSite(t *testing.T) {
	site, err := fs.Sub(siteFiles, "site")
	if err != nil {
		t.Fatal(err)
	}
	h, err := newHandler(site, zap.NewNop())
	if err != nil {
		t.Fatalf("newHandler() error = %v", err)
	}

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	page := string(body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %q", resp.StatusCode, page)
	}

	for _, want := range []string{
		"<h1>Hello, World!</h1>",
		"<li>1</li><li>2</li><li>3</li>",
		"<h2>Nested components</h2>",
		"<h1>Hello, from inside a card.</h1>",
		"<p>Light DOM content stays outside the shadow root.</p>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q\n%s", want, page)
		}
	}
}
