// Command toast discovers component folders and renders pages with their
// components expanded.
//
//	toast discover --recipe toast-recipe.json
//	toast render index.html --root site > out.html
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
