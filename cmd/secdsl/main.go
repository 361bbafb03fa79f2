// Package main provides the secdsl command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/secdsl/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	// Failures (invalid document, failed scenario) were already reported on
	// stdout; everything else goes to stderr.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		// Usage errors from cobra: bad flags, wrong argument count.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}
	if exitErr.Code != cli.ExitFailure {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitErr.Code
}
