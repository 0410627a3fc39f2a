// Command example serves a small site whose pages use components discovered
// from site/components.
//
//	go run ./example
//	open http://localhost:8080/
package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/pthm/toast"
	"github.com/pthm/toast/lib/discover"
)

//go:embed site
var siteFiles embed.FS

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	site, err := fs.Sub(siteFiles, "site")
	if err != nil {
		log.Fatal(err)
	}

	h, err := newHandler(site, logger)
	if err != nil {
		log.Fatal(err)
	}

	addr := ":8080"
	fmt.Printf("Starting server at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal(err)
	}
}

// newHandler registers every component folder under components/ with the
// x- prefix and serves the site.
func newHandler(site fs.FS, logger *zap.Logger) (http.Handler, error) {
	rt := toast.New(
		toast.WithFetcher(&toast.FSFetcher{FS: site}),
		toast.WithLogger(logger),
	)

	entries, err := discover.Discover(rt.Registry(), site, "components", "x-")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		logger.Info("component defined", zap.String("tag", e.Tag), zap.String("template", e.TemplatePath))
	}

	mux := http.NewServeMux()
	mux.Handle("/", rt.Handler(site))
	return mux, nil
}
