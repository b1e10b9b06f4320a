// Package report folds a list of symbols into display rows.
package report

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"tickerweb/internal/format"
	"tickerweb/internal/provider"
	"tickerweb/internal/stats"
	"tickerweb/internal/symbols"
)

const (
	DefaultLookbackDays     = 366
	DefaultQuoteURLTemplate = "https://finance.yahoo.com/quote/%s/"
)

type Options struct {
	// LookbackDays is how far back the price history window starts.
	LookbackDays int
	// CallTimeout bounds each provider call. Zero means only ctx applies.
	CallTimeout time.Duration
	// QuoteURLTemplate has one %s for the symbol.
	QuoteURLTemplate string
	Now              func() time.Time
	Logger           *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.LookbackDays <= 0 {
		o.LookbackDays = DefaultLookbackDays
	}
	if o.QuoteURLTemplate == "" {
		o.QuoteURLTemplate = DefaultQuoteURLTemplate
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Display holds the formatted columns of a row.
type Display struct {
	MarketCap     string `json:"market_cap"`
	Revenue       string `json:"revenue"`
	EBITDA        string `json:"ebitda"`
	PERatio       string `json:"pe_ratio"`
	PSRatio       string `json:"ps_ratio"`
	Volatility    string `json:"volatility"`
	RevenueGrowth string `json:"revenue_growth"`
	AverageVolume string `json:"average_volume"`
}

// Row is one symbol's result. A row is always produced, even when the
// provider failed, so the user can see which symbol had trouble.
type Row struct {
	Symbol     symbols.Symbol    `json:"symbol"`
	Snapshot   provider.Snapshot `json:"snapshot"`
	Volatility *float64          `json:"volatility,omitempty"`

	// Observations is the number of daily closes the volatility was computed from.
	Observations int      `json:"observations"`
	Display      Display  `json:"display"`
	Link         string   `json:"link"`
	LinkText     string   `json:"link_text"`
	Notes        []string `json:"notes,omitempty"`
}

// Window returns the history range for a batch run at now: LookbackDays back
// to yesterday, on UTC day boundaries.
func Window(now time.Time, lookbackDays int) (start, end time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -lookbackDays), today.AddDate(0, 0, -1)
}

// Build looks up each symbol in order, one at a time, and returns one row per
// input symbol. Per-symbol failures are recorded on the row and never stop
// the batch.
func Build(ctx context.Context, p provider.Provider, syms []symbols.Symbol, opts Options) []Row {
	opts = opts.withDefaults()
	start, end := Window(opts.Now(), opts.LookbackDays)

	rows := make([]Row, 0, len(syms))
	for _, sym := range syms {
		rows = append(rows, buildRow(ctx, p, sym, start, end, opts))
	}
	return rows
}

func buildRow(ctx context.Context, p provider.Provider, sym symbols.Symbol, start, end time.Time, opts Options) Row {
	log := opts.Logger.With(zap.String("symbol", sym.String()))
	link := QuoteURL(opts.QuoteURLTemplate, sym)
	row := Row{Symbol: sym, Link: link, LinkText: LinkText(link)}

	snap, err := call(ctx, opts.CallTimeout, func(ctx context.Context) (provider.Snapshot, error) {
		return p.Snapshot(ctx, sym)
	})
	if err != nil {
		log.Warn("snapshot failed", zap.Error(err))
		row.Notes = append(row.Notes, "snapshot unavailable: "+Reason(err))
		snap = provider.Snapshot{Symbol: sym}
	}
	row.Snapshot = snap

	series, err := call(ctx, opts.CallTimeout, func(ctx context.Context) (provider.PriceSeries, error) {
		return p.History(ctx, sym, start, end)
	})
	if err != nil {
		log.Warn("history failed", zap.Error(err))
		row.Notes = append(row.Notes, "history unavailable: "+Reason(err))
	}
	row.Observations = len(series)

	vol, err := stats.AnnualizedVolatility(series.Closes())
	switch {
	case err == nil:
		row.Volatility = &vol
	case errors.Is(err, stats.ErrInsufficientData):
		log.Debug("insufficient history for volatility", zap.Int("closes", len(series)))
	default:
		log.Warn("volatility failed", zap.Error(err))
	}

	row.Display = Display{
		MarketCap:     format.MarketCap(snap.MarketCap),
		Revenue:       format.Millions(snap.TotalRevenue),
		EBITDA:        format.Millions(snap.EBITDA),
		PERatio:       format.Ratio(snap.TrailingPE),
		PSRatio:       format.Ratio(snap.PriceToSales),
		Volatility:    format.Volatility(vol, row.Volatility != nil),
		RevenueGrowth: format.Percent(snap.RevenueGrowth),
		AverageVolume: format.Volume(snap.AverageVolume),
	}
	return row
}

func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// Reason maps a provider error to a short user-facing category. Vendor
// response text stays in the logs.
func Reason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, provider.ErrNotFound):
		return "not found"
	case errors.Is(err, provider.ErrRateLimited):
		return "rate limited"
	case errors.Is(err, provider.ErrUnauthorized):
		return "unauthorized"
	default:
		return "provider error"
	}
}
