package toast

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context. A *Document is a templ.Component, so a rendered page
// is served the same way:
//
//	doc, _ := rt.ParseFragment(body)
//	toast.Render(w, r, doc)
//
// The component is rendered into a buffer first so that a failure leaves
// the response untouched for the caller to report.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// IsPage reports whether a request path names a page rather than an asset:
// directories and .html files are pages.
func IsPage(p string) bool {
	return strings.HasSuffix(p, "/") || strings.EqualFold(path.Ext(p), ".html")
}

// Handler serves the pages in site with every defined component rendered
// into it. Directory paths serve their index.html. Other files, including
// component templates and stylesheets, are served as they are.
//
// Errors go to rt.OnError.
func (rt *Runtime) Handler(site fs.FS) http.Handler {
	files := http.FileServer(http.FS(site))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !IsPage(r.URL.Path) {
			files.ServeHTTP(w, r)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.HasSuffix(name, "/") {
			name += "index.html"
		}

		doc, err := rt.OpenPage(site, name)
		if err != nil {
			rt.OnError(w, r, err)
			return
		}
		defer doc.Close()

		if err := Render(w, r, doc); err != nil {
			rt.logger.Error("render page", zap.String("page", name), zap.Error(err))
			rt.OnError(w, r, err)
		}
	})
}

// OpenPage parses a page file from fsys. Files starting with a doctype or an
// <html> tag are parsed as complete documents, anything else as a fragment.
func (rt *Runtime) OpenPage(fsys fs.FS, name string) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	head := strings.ToLower(strings.TrimSpace(string(data[:min(len(data), 64)])))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		return rt.Parse(bytes.NewReader(data))
	}
	return rt.ParseFragment(bytes.NewReader(data))
}
