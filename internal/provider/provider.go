package provider

import (
	"context"
	"time"

	"tickerweb/internal/symbols"
)

// Snapshot is the normalized set of company metrics returned by all providers.
// Fields the provider does not report are left at zero. RevenueGrowth and
// AverageVolume stay nil when absent so callers can tell "missing" from zero.
type Snapshot struct {
	Symbol        symbols.Symbol `json:"symbol"`
	MarketCap     float64        `json:"market_cap"`
	TotalRevenue  float64        `json:"total_revenue"`
	EBITDA        float64        `json:"ebitda"`
	TrailingPE    float64        `json:"trailing_pe"`
	PriceToSales  float64        `json:"price_to_sales"`
	RevenueGrowth *float64       `json:"revenue_growth,omitempty"`
	AverageVolume *float64       `json:"average_volume,omitempty"`
	ReceivedAt    time.Time      `json:"received_at"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is ascending by date. It may be empty for unknown or delisted symbols.
type PriceSeries []PricePoint

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

type SnapshotSource interface {
	Name() string
	Snapshot(ctx context.Context, sym symbols.Symbol) (Snapshot, error)
}

type HistorySource interface {
	Name() string
	History(ctx context.Context, sym symbols.Symbol, start, end time.Time) (PriceSeries, error)
}

// Provider supplies both halves of a lookup.
type Provider interface {
	SnapshotSource
	HistorySource
}
