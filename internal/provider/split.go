package provider

import (
	"context"
	"time"

	"tickerweb/internal/symbols"
)

// Split serves snapshots and price history from two different sources,
// e.g. fundamentals from Yahoo and daily bars from Alpaca.
type Split struct {
	Snapshots SnapshotSource
	Prices    HistorySource
}

func (s Split) Name() string {
	if s.Snapshots.Name() == s.Prices.Name() {
		return s.Snapshots.Name()
	}
	return s.Snapshots.Name() + "+" + s.Prices.Name()
}

func (s Split) Snapshot(ctx context.Context, sym symbols.Symbol) (Snapshot, error) {
	return s.Snapshots.Snapshot(ctx, sym)
}

func (s Split) History(ctx context.Context, sym symbols.Symbol, start, end time.Time) (PriceSeries, error) {
	return s.Prices.History(ctx, sym, start, end)
}
