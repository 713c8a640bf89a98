// Command docscache administers the on-disk response cache used by the
// documentation lookup tools: clear it, list and inspect entries, and serve
// health and metrics endpoints.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// set by the release build
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "docscache:", err)
		cancel()
		os.Exit(1)
	}
}
