package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/toast/lib/discover"
	"github.com/pthm/toast/lib/recipe"
)

func newDiscoverCommand(rootOpts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Write registration calls for every component folder",
		Long: `Scan the recipe's directoryPath for component folders and write one
define(tag, template, stylesheet) call per folder to outputFilePath.

A folder name/ is a component when it holds name.html; name.css is
picked up when present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd.OutOrStdout(), recipePath(cmd, rootOpts, "."), dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be written without writing it")

	return cmd
}

func runDiscover(w io.Writer, recipeFile string, dryRun bool) error {
	r, err := recipe.Load(recipeFile)
	if err != nil {
		return err
	}

	entries, err := discover.Scan(os.DirFS(r.Root), r.DirectoryPath, r.ComponentPrefix)
	if err != nil {
		return err
	}
	if err := discover.Write(r.OutputFile(), entries, dryRun); err != nil {
		return err
	}

	printSummary(w, r.OutputFile(), entries, dryRun)
	return nil
}

func printSummary(w io.Writer, output string, entries []discover.Entry, dryRun bool) {
	fmt.Fprintf(w, "%s %d component(s) -> %s\n", titleStyle.Render("toast"), len(entries), pathStyle.Render(output))

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Tag))
	}
	for _, e := range entries {
		line := fmt.Sprintf("  %-*s  %s", width, e.Tag, e.TemplatePath)
		if e.StylesheetPath != "" {
			line += " + " + e.StylesheetPath
		}
		fmt.Fprintln(w, tagStyle.Render(line))
	}

	if dryRun {
		fmt.Fprintln(w, helpStyle.Render("dry run: nothing written"))
	}
}
