// Package main provides the entry point for the keel CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keeldata/keel/cmd/keel/cmd"
	"github.com/keeldata/keel/pkg/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx); err != nil {
		logging.Default().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
