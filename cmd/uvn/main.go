// Package main is the entry point for the uvn CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Quidge/uvn/cmd"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cmd.SetVersionInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	if err != nil {
		os.Exit(cmd.HandleError(err, os.Stderr))
	}
}
