package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"tickerweb/internal/app"
	"tickerweb/internal/config"
	"tickerweb/internal/logger"
	"tickerweb/internal/report"
	"tickerweb/internal/symbols"
)

func main() {
	var (
		symbolsInput string
		asJSON       bool
		verbose      bool
		timeout      time.Duration
		configPath   string
	)
	flag.StringVar(&symbolsInput, "symbols", getenv("SYMBOLS", ""), `tickers separated by spaces or commas, e.g. "$aapl, msft tsla"`)
	flag.BoolVar(&asJSON, "json", false, "print rows as JSON instead of a table")
	flag.BoolVar(&verbose, "verbose", false, "debug logging and provider diagnostics")
	flag.DurationVar(&timeout, "timeout", 0, "overall deadline for the batch (0 = none)")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config file (optional)")
	flag.Parse()

	if symbolsInput == "" && flag.NArg() > 0 {
		symbolsInput = strings.Join(flag.Args(), " ")
	}
	if err := run(configPath, symbolsInput, asJSON, verbose, timeout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, input string, asJSON, verbose bool, timeout time.Duration, out io.Writer) error {
	syms := symbols.Parse(input)
	if len(syms) == 0 {
		return fmt.Errorf("no symbols provided")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
		cfg.Provider.Quiet = false
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := config.ResolveSecrets(ctx, &cfg); err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	p, err := app.NewProvider(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	rows := report.Build(ctx, p, syms, app.ReportOptions(cfg, log))
	log.Debug("batch done", zap.Int("symbols", len(syms)), zap.Duration("took", time.Since(start)))

	if asJSON {
		return writeJSON(out, rows)
	}
	return writeTable(out, rows)
}

func writeTable(w io.Writer, rows []report.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Ticker\tMarket Cap\tRevenue\tEBITDA\tPE Ratio\tPS Ratio\tVolatility\tRevenue Growth\tAvg Volume\tLink\t")
	for _, r := range rows {
		d := r.Display
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Symbol, d.MarketCap, d.Revenue, d.EBITDA, d.PERatio, d.PSRatio,
			d.Volatility, d.RevenueGrowth, d.AverageVolume, r.Link)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, r := range rows {
		for _, n := range r.Notes {
			fmt.Fprintf(w, "%s: %s\n", r.Symbol, n)
		}
	}
	return nil
}

func writeJSON(w io.Writer, rows []report.Row) error {
	b, err := json.Marshal(struct {
		Rows []report.Row `json:"rows"`
	}{rows})
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.Pretty(b))
	return err
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
