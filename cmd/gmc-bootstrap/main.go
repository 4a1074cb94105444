package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gmc/bootstrap/app"
	"github.com/gmc/bootstrap/config"
	"github.com/gmc/bootstrap/observability"
)

func main() {
	cli := kingpin.New("gmc-bootstrap", "Loads and validates runtime configuration, waits for the database and cache to come up, then serves the health surface")
	envFile := cli.Flag("env-file", "Environment file loaded before reading the process environment").String()
	httpAddr := cli.Flag("http-addr", "Address for the health surface (overrides HTTP_ADDR)").String()
	wait := cli.Flag("wait", "Retry connectivity validation with backoff until the startup timeout").Default("true").Bool()

	kingpin.MustParse(cli.Parse(os.Args[1:]))

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "load env file %s: %v\n", *envFile, err)
			os.Exit(1)
		}
	}
	// Flag overrides flow through the environment so the loaded config stays
	// immutable after construction.
	if *httpAddr != "" {
		if err := os.Setenv("HTTP_ADDR", *httpAddr); err != nil {
			fmt.Fprintf(os.Stderr, "set HTTP_ADDR: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}

	a := app.New(cfg, logger)

	if *wait {
		waitCtx, cancel := context.WithTimeout(ctx, cfg.Probe.StartupTimeout)
		err := a.WaitForDependencies(waitCtx)
		cancel()
		if err != nil {
			a.Logger.Fatal("dependencies unreachable within startup timeout", zap.Error(err))
		}
	}

	if err := a.Run(ctx); err != nil {
		a.Logger.Fatal("server error", zap.Error(err))
	}

	_ = a.Close()
}
