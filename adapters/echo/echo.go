// Package toastecho provides Echo framework integration for toast pages.
//
// Serve a site directory with every page rendered:
//
//	e := echo.New()
//	toastecho.Mount(e, rt, os.DirFS("site"))
//
// Or mount on a group with middleware:
//
//	g := e.Group("/docs", authMiddleware)
//	toastecho.MountGroup(g, rt, docs)
//
// Single pages can be routed individually with Page.
package toastecho

import (
	"io/fs"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/toast"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	path string
}

// WithPath sets the URL path prefix the site is served under.
// Defaults to "/".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// Mount serves site on an Echo instance. Pages are rendered through rt,
// everything else is served as a static file.
//
//	e := echo.New()
//	toastecho.Mount(e, rt, site)
//
//	// Under a prefix:
//	toastecho.Mount(e, rt, site, toastecho.WithPath("/docs/"))
func Mount(e *echo.Echo, rt *toast.Runtime, site fs.FS, opts ...Option) {
	o := newOptions(opts)
	e.Match([]string{http.MethodGet, http.MethodHead}, o.path+"*", handler(rt, site))
}

// MountGroup serves site on an Echo group, so pages share the group's
// middleware (auth, logging, etc.).
//
//	g := e.Group("/app", authMiddleware)
//	toastecho.MountGroup(g, rt, site)
func MountGroup(g *echo.Group, rt *toast.Runtime, site fs.FS, opts ...Option) {
	o := newOptions(opts)
	g.Match([]string{http.MethodGet, http.MethodHead}, o.path+"*", handler(rt, site))
}

func newOptions(opts []Option) *options {
	o := &options{path: "/"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// handler serves the wildcard part of the route from site.
func handler(rt *toast.Runtime, site fs.FS) echo.HandlerFunc {
	h := rt.Handler(site)
	return func(c echo.Context) error {
		r := c.Request().Clone(c.Request().Context())
		r.URL.Path = "/" + c.Param("*")
		r.URL.RawPath = ""
		h.ServeHTTP(c.Response(), r)
		return nil
	}
}

// Page returns a handler rendering one page of site.
//
//	e.GET("/", toastecho.Page(rt, site, "index.html"))
func Page(rt *toast.Runtime, site fs.FS, name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := rt.OpenPage(site, name)
		if err != nil {
			if toast.IsNotFound(err) {
				return echo.NewHTTPError(http.StatusNotFound)
			}
			return err
		}
		defer doc.Close()
		return Render(c, doc)
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return toastecho.Render(c, doc)
//	}
func Render(c echo.Context, component templ.Component) error {
	return toast.Render(c.Response(), c.Request(), component)
}
