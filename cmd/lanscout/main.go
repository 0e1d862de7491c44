package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"

	"lanscout/internal/runner"
)

func main() {
	options := runner.ParseOptions()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	if err := r.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			gologger.Info().Msgf("Scan interrupted\n")
			os.Exit(1)
		}
		gologger.Fatal().Msgf("Could not run scan: %s\n", err)
	}
}
