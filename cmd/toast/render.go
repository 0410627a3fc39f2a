package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/toast"
	"github.com/pthm/toast/lib/discover"
	"github.com/pthm/toast/lib/recipe"
)

type renderOptions struct {
	Root      string
	LoadCache string
	SaveCache string
}

func newRenderCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <page.html>",
		Short: "Render a page with its components expanded",
		Long: `Render a page from --root to stdout. Every defined component in the
page is fetched, rendered and emitted as a declarative shadow root.

Definitions come from the recipe's output file when it exists, otherwise
from scanning the recipe's directoryPath.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(rootOpts.Verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runRender(cmd, logger, recipePath(cmd, rootOpts, opts.Root), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "site root that pages, templates and stylesheets are read from")
	cmd.Flags().StringVar(&opts.LoadCache, "load-cache", "", "prime the resource cache from a snapshot file")
	cmd.Flags().StringVar(&opts.SaveCache, "save-cache", "", "write the resource cache to a snapshot file after rendering")

	return cmd
}

func runRender(cmd *cobra.Command, logger *zap.Logger, recipeFile, page string, opts *renderOptions) error {
	site := os.DirFS(opts.Root)

	rt := toast.New(
		toast.WithFetcher(&toast.FSFetcher{FS: site}),
		toast.WithLogger(logger),
	)

	entries, err := definitions(site, recipeFile)
	if err != nil {
		return err
	}
	if err := discover.Register(rt.Registry(), entries); err != nil {
		return err
	}
	logger.Debug("components registered", zap.Int("count", len(entries)))

	if opts.LoadCache != "" {
		if err := loadCache(rt.Cache(), opts.LoadCache); err != nil {
			return err
		}
	}

	doc, err := rt.OpenPage(site, page)
	if err != nil {
		return err
	}
	defer doc.Close()

	if err := doc.Render(cmd.Context(), cmd.OutOrStdout()); err != nil {
		return err
	}

	if opts.SaveCache != "" {
		return saveCache(rt.Cache(), opts.SaveCache)
	}
	return nil
}

// definitions reads the recipe's generated registration file, falling back
// to a fresh scan when it has not been generated.
func definitions(site fs.FS, recipeFile string) ([]discover.Entry, error) {
	r, err := recipe.Load(recipeFile)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(r.OutputFile())
	switch {
	case err == nil:
		defer f.Close()
		return discover.Load(f, r.OutputFile())
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	return discover.Scan(site, r.DirectoryPath, r.ComponentPrefix)
}

func loadCache(c *toast.Cache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.ReadFrom(f)
	return err
}

func saveCache(c *toast.Cache, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
