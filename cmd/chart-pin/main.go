// Package main provides the chart-pin command, which keeps the Helm chart
// versions pinned in Argo CD Applications up to date.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is overridden at build time.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		var silent errSilentExit
		if !errors.As(err, &silent) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}

// errSilentExit fails the process without printing; the command has
// already reported the problem.
type errSilentExit struct {
	reason string
}

func (e errSilentExit) Error() string { return e.reason }
