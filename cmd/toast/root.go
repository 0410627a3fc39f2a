package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/toast/lib/recipe"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Verbose bool
	Recipe  string
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "toast",
		Short:         "toast - HTML components from folders",
		Long:          "Discovers component folders and renders pages with every defined component expanded into a declarative shadow root.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	cmd.PersistentFlags().StringVar(&opts.Recipe, "recipe", recipe.DefaultFile, "recipe file")

	cmd.AddCommand(newDiscoverCommand(opts))
	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toast version %s\n", version)
		},
	}
}

// newLogger returns a development logger with --verbose and a production
// logger otherwise. Both write to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// recipePath resolves the --recipe flag against root unless it was given
// explicitly.
func recipePath(cmd *cobra.Command, opts *rootOptions, root string) string {
	if cmd.Flags().Changed("recipe") || filepath.IsAbs(opts.Recipe) {
		return opts.Recipe
	}
	return filepath.Join(root, opts.Recipe)
}
