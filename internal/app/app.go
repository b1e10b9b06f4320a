// Package app wires configuration into the provider stack shared by the
// server and the CLI.
package app

import (
	"errors"
	"net/http"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"

	"tickerweb/internal/config"
	"tickerweb/internal/httpx"
	"tickerweb/internal/provider"
	"tickerweb/internal/provider/alpacahistory"
	"tickerweb/internal/provider/ratelimit"
	"tickerweb/internal/provider/yahoo"
	"tickerweb/internal/provider/yahooadapter"
	"tickerweb/internal/report"
)

var ErrMissingAlpacaCredentials = errors.New("history.source=alpaca needs alpaca.api_key and alpaca.api_secret")

// NewProvider builds Yahoo fundamentals plus the configured history source,
// behind the configured rate limit.
func NewProvider(cfg config.Config, log *zap.Logger) (provider.Provider, error) {
	httpClient := httpx.New(cfg.Provider.HTTPTimeout)
	httpClient.UserAgent = cfg.Provider.UserAgent

	opts := []yahoo.Option{
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithLogger(log),
		yahoo.WithQuiet(cfg.Provider.Quiet),
	}
	if cfg.Yahoo.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(cfg.Yahoo.BaseURL))
	}
	if cfg.Provider.UserAgent != "" {
		opts = append(opts, yahoo.WithHeader(http.Header{"User-Agent": []string{cfg.Provider.UserAgent}}))
	}
	yh := yahooadapter.New(yahooadapter.Config{
		Name:          "Yahoo",
		FlightTimeout: cfg.Provider.FlightTimeout,
	}, yahoo.NewClient(opts...))

	var p provider.Provider = yh
	if cfg.History.Source == "alpaca" {
		if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
			return nil, ErrMissingAlpacaCredentials
		}
		hist := alpacahistory.New(alpacahistory.Config{
			Name:    "Alpaca",
			APIKey:  cfg.Alpaca.APIKey,
			Secret:  cfg.Alpaca.APISecret,
			BaseURL: cfg.Alpaca.DataBaseURL,
			Feed:    marketdata.Feed(cfg.Alpaca.Feed),
		})
		p = provider.Split{Snapshots: yh, Prices: hist}
	}

	p = ratelimit.Wrap(p, cfg.Provider.MaxRequestsPerMinute, cfg.Provider.Burst, cfg.Provider.MinRequestInterval)
	log.Info("provider ready",
		zap.String("provider", p.Name()),
		zap.Int("max_rpm", cfg.Provider.MaxRequestsPerMinute),
		zap.Bool("quiet", cfg.Provider.Quiet),
	)
	return p, nil
}

// ReportOptions maps configuration onto report.Options.
func ReportOptions(cfg config.Config, log *zap.Logger) report.Options {
	return report.Options{
		LookbackDays:     cfg.History.LookbackDays,
		CallTimeout:      cfg.Provider.CallTimeout,
		QuoteURLTemplate: cfg.Display.QuoteURLTemplate,
		Logger:           log,
	}
}
