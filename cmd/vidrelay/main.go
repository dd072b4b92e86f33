// Package main is the entrypoint of vidrelay.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidrelay/internal/cfg"
	"vidrelay/internal/utils/logging"

	"github.com/joho/godotenv"
)

// main is the main entrypoint of the program.
func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()

	// A missing .env is fine; anything else is worth knowing about
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "vidrelay: failed to load .env: %v\n", err)
	}

	// create cancellable context for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	if err := cfg.InitCommands(); err != nil {
		fmt.Fprintf(os.Stderr, "vidrelay: %v\n", err)
		return 1
	}

	runErr := cfg.Execute(ctx)
	defer func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "vidrelay: failed to close log file: %v\n", err)
		}
	}()

	if runErr != nil {
		logging.E("Error: %v", runErr)
		return 1
	}
	logging.D(1, "vidrelay exited after %v", time.Since(startTime).Round(time.Millisecond))
	return 0
}
