package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/gmc/bootstrap/config"
	"github.com/gmc/bootstrap/probe"
)

// preflight loads the configuration, runs one connectivity validation pass
// against the declared database and cache, and exits 0 only when everything
// passes. Intended for test harnesses and orchestration hooks.
func main() {
	cli := kingpin.New("preflight", "Validates runtime configuration and dependency connectivity")
	envFile := cli.Flag("env-file", "Environment file loaded before reading the process environment").String()
	timeout := cli.Flag("timeout", "Per-dependency probe timeout (overrides PROBE_TIMEOUT)").Duration()

	kingpin.MustParse(cli.Parse(os.Args[1:]))

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "load env file %s: %v\n", *envFile, err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	cfg, err := config.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("configuration ok: network=%s database=[%s] cache=[%s]\n",
		cfg.Network, cfg.Database.LogString(), cfg.Cache.LogString())

	probeTimeout := cfg.Probe.Timeout
	if *timeout > 0 {
		probeTimeout = *timeout
	}

	report := probe.ValidateConnectivity(ctx, probeTimeout,
		probe.NewPostgres(cfg.Database),
		probe.NewRedis(cfg.Cache),
	)

	for _, res := range report.Results {
		if res.Healthy() {
			fmt.Printf("ok   %-8s %s (%s)\n", res.Dependency, res.Addr, res.Duration.Round(time.Millisecond))
		} else {
			fmt.Printf("FAIL %-8s %v\n", res.Dependency, res.Err)
		}
	}

	if !report.Healthy() {
		os.Exit(1)
	}
}
