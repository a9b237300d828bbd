package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/Sternrassler/fpds-client/pkg/client"
	"github.com/Sternrassler/fpds-client/pkg/export"
	"github.com/Sternrassler/fpds-client/pkg/logging"
	"github.com/Sternrassler/fpds-client/pkg/metrics"
	"github.com/Sternrassler/fpds-client/pkg/pagination"
	"github.com/Sternrassler/fpds-client/pkg/records"
	"github.com/Sternrassler/fpds-client/pkg/search"
	"github.com/urfave/cli/v2"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "run one query, or one query per --piid",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "piid", Usage: "contract id; repeat for a concurrent multi-contract search"},
			&cli.StringFlag{Name: "date-range", Usage: `SIGNED_DATE filter, e.g. "[2022/01/01, 2024/12/31]"`},
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "extra filter KEY=VALUE; repeatable"},
			&cli.StringSliceFlag{Name: "tag", Usage: "metadata key=value stamped on every record of a multi-contract search"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(export.FormatJSON), Usage: "json, csv or table"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
			&cli.BoolFlag{Name: "stream", Usage: "write pages as they arrive (json lines or csv)"},
		},
		Action: searchAction,
	}
}

func searchAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := logging.NewLogger("fpds-cli")

	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	params, err := parsePairs(c.StringSlice("param"))
	if err != nil {
		return err
	}
	if dr := c.String("date-range"); dr != "" {
		params.Set(search.SignedDate, dr)
	}

	stopMetrics, err := serveMetrics(cfg.MetricsAddr)
	if err != nil {
		return err
	}
	defer stopMetrics()

	fpds, err := client.New(cfg.ClientConfig())
	if err != nil {
		return err
	}
	fetcher := pagination.NewFetcher(fpds, cfg.FetcherConfig())

	out, closeOut, err := openOutput(c)
	if err != nil {
		return err
	}
	defer closeOut()

	if ids := c.StringSlice("piid"); len(ids) > 0 {
		if c.Bool("stream") {
			return errors.New("--stream cannot be combined with --piid")
		}
		return searchContracts(c, fetcher, ids, params, format, out)
	}

	if c.Bool("stream") {
		return streamSearch(c.Context, fetcher, params, format, out)
	}

	res, err := fetcher.Fetch(c.Context, params)
	if err != nil {
		return err
	}
	logger.Info().
		Str("fetch_id", res.Metadata.FetchID).
		Int("records", len(res.Records)).
		Dur("elapsed", res.Metadata.Elapsed).
		Msg("Search complete")
	return export.Write(out, format, res.Records)
}

func searchContracts(c *cli.Context, f *pagination.Fetcher, ids []string, params search.Params, format export.Format, out io.Writer) error {
	opts := pagination.SearchOptions{Params: params}
	if tags := c.StringSlice("tag"); len(tags) > 0 {
		pairs, err := parsePairs(tags)
		if err != nil {
			return err
		}
		opts.Metadata = records.Metadata{}
		for k, v := range pairs {
			opts.Metadata[k] = v[len(v)-1]
		}
	}

	batch := f.SearchContracts(c.Context, ids, opts)
	if len(batch.Failed) == len(ids) {
		return fmt.Errorf("all %d contract queries failed", len(ids))
	}
	for id, err := range batch.Failed {
		fmt.Fprintf(c.App.ErrWriter, "warning: %s: %v\n", id, err)
	}
	return export.Write(out, format, batch.Records)
}

// streamSearch writes each page as soon as Stream delivers it.
func streamSearch(ctx context.Context, f *pagination.Fetcher, params search.Params, format export.Format, out io.Writer) error {
	switch format {
	case export.FormatCSV:
		if err := export.CSVHeader(out); err != nil {
			return err
		}
		return f.Stream(ctx, params, func(b pagination.PageBatch) error {
			return export.CSVRows(out, b.Records)
		})
	case export.FormatJSON:
		return f.Stream(ctx, params, func(b pagination.PageBatch) error {
			return export.JSONLines(out, b.Records)
		})
	default:
		return fmt.Errorf("--stream supports json and csv, not %s", format)
	}
}

// parsePairs parses KEY=VALUE arguments. Repeated keys collect values.
func parsePairs(args []string) (search.Params, error) {
	p := search.Params{}
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid %q, want KEY=VALUE", arg)
		}
		p.Add(k, v)
	}
	return p, nil
}

func openOutput(c *cli.Context) (io.Writer, func(), error) {
	path := c.String("output")
	if path == "" || path == "-" {
		return c.App.Writer, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// serveMetrics exposes /metrics while the command runs. An empty addr
// disables it.
func serveMetrics(addr string) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()

	logger := logging.NewLogger("fpds-cli")
	logger.Info().
		Str("addr", ln.Addr().String()).
		Strs("metrics", metrics.Names).
		Msg("Serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
