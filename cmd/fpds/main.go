// Command fpds fetches FPDS award-contract records and writes them as JSON,
// CSV or a console table.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/fpds-client/internal/config"
	"github.com/Sternrassler/fpds-client/pkg/logging"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fpds: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "fpds",
		Usage:     "fetch award-contract records from the FPDS ATOM feed",
		Writer:    stdout,
		ErrWriter: stderr,

		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"FPDS_CONFIG"}},
			&cli.StringFlag{Name: "base-url", Usage: "feed base URL"},
			&cli.StringFlag{Name: "user-agent", Usage: "User-Agent header"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "log-pretty", Usage: "human-readable logs"},
			&cli.IntFlag{Name: "concurrency", Usage: "max in-flight requests"},
			&cli.IntFlag{Name: "retry-attempts", Usage: "tries per request"},
			&cli.DurationFlag{Name: "retry-delay", Usage: "base backoff between tries"},
			&cli.DurationFlag{Name: "timeout", Usage: "per-request timeout"},
			&cli.Float64Flag{Name: "rps", Usage: "static request pacing, 0 disables"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve Prometheus metrics on this address while running"},
		},
		Commands: []*cli.Command{
			searchCommand(),
			fieldsCommand(),
		},
	}
}

// loadConfig layers command-line flags over the file and environment.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-pretty") {
		cfg.Log.Pretty = c.Bool("log-pretty")
	}
	if c.IsSet("concurrency") {
		cfg.MaxConcurrency = c.Int("concurrency")
	}
	if c.IsSet("retry-attempts") {
		cfg.RetryAttempts = c.Int("retry-attempts")
	}
	if c.IsSet("retry-delay") {
		cfg.RetryDelay = c.Duration("retry-delay")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("rps") {
		cfg.RequestsPerSecond = c.Float64("rps")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	logging.Setup(cfg.LoggingConfig(c.App.ErrWriter))
	return cfg, nil
}

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 5 * time.Second
