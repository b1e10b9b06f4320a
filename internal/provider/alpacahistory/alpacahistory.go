// Package alpacahistory serves daily price history from Alpaca market data.
package alpacahistory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"tickerweb/internal/provider"
	"tickerweb/internal/symbols"
)

// BarsClient is the slice of *marketdata.Client this package uses.
type BarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

type Config struct {
	Name    string
	APIKey  string
	Secret  string
	BaseURL string          // optional, e.g. https://data.sandbox.alpaca.markets
	Feed    marketdata.Feed // "iex" (free plans) or "sip"
}

type Source struct {
	cfg    Config
	client BarsClient
}

// New builds a Source backed by a real Alpaca market data client.
func New(cfg Config) *Source {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.Secret,
		BaseURL:   cfg.BaseURL,
	})
	return NewWithClient(cfg, client)
}

func NewWithClient(cfg Config, client BarsClient) *Source {
	if cfg.Name == "" {
		cfg.Name = "Alpaca"
	}
	if cfg.Feed == "" {
		cfg.Feed = marketdata.IEX
	}
	return &Source{cfg: cfg, client: client}
}

func (s *Source) Name() string { return s.cfg.Name }

// History returns split-adjusted daily closes in [start, end], oldest first.
// The Alpaca SDK call is not context-aware, so cancellation is only checked
// before the request is issued.
func (s *Source) History(ctx context.Context, sym symbols.Symbol, start, end time.Time) (provider.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars, err := s.client.GetBars(sym.String(), marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.Split,
		Start:      start,
		End:        end,
		Feed:       s.cfg.Feed,
	})
	if err != nil {
		// unknown symbols come back as 4xx "invalid symbol"; treat as no data
		if strings.Contains(strings.ToLower(err.Error()), "invalid symbol") {
			return provider.PriceSeries{}, nil
		}
		return nil, fmt.Errorf("%s history %s: %w", s.cfg.Name, sym, err)
	}

	series := make(provider.PriceSeries, 0, len(bars))
	for _, b := range bars {
		series = append(series, provider.PricePoint{Date: b.Timestamp.UTC(), Close: b.Close})
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}
