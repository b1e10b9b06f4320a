package yahooadapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"tickerweb/internal/provider"
	"tickerweb/internal/provider/yahoo"
	"tickerweb/internal/symbols"
)

const defaultFlightTimeout = 30 * time.Second

type Config struct {
	Name    string   // display name, default: Yahoo
	Modules []string // quoteSummary modules, default: yahoo.DefaultModules
	// FlightTimeout bounds one upstream lookup shared by coalesced callers.
	// Each caller still stops waiting when its own ctx is done.
	FlightTimeout time.Duration
}

// Adapter exposes a yahoo.Client as a provider.Provider. Unknown symbols come
// back as an empty snapshot or series instead of an error.
type Adapter struct {
	cfg    Config
	client *yahoo.Client

	// coalesces identical lookups that are in flight at the same time;
	// nothing is kept once the call returns
	sf singleflight.Group
}

func New(cfg Config, client *yahoo.Client) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	if len(cfg.Modules) == 0 {
		cfg.Modules = yahoo.DefaultModules
	}
	if cfg.FlightTimeout <= 0 {
		cfg.FlightTimeout = defaultFlightTimeout
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Snapshot(ctx context.Context, sym symbols.Symbol) (provider.Snapshot, error) {
	v, err := a.do(ctx, "snapshot:"+sym.String(), func(ctx context.Context) (any, error) {
		qs, err := a.client.GetQuoteSummary(ctx, sym.String(), a.cfg.Modules...)
		if errors.Is(err, yahoo.ErrNotFound) {
			return provider.Snapshot{Symbol: sym, ReceivedAt: time.Now().UTC()}, nil
		}
		if err != nil {
			return nil, a.fail("snapshot", sym, err)
		}
		return toSnapshot(sym, qs), nil
	})
	if err != nil {
		return provider.Snapshot{Symbol: sym}, err
	}
	return v.(provider.Snapshot), nil
}

func (a *Adapter) History(ctx context.Context, sym symbols.Symbol, start, end time.Time) (provider.PriceSeries, error) {
	key := fmt.Sprintf("history:%s:%d:%d", sym, start.Unix(), end.Unix())
	v, err := a.do(ctx, key, func(ctx context.Context) (any, error) {
		closes, err := a.client.GetChart(ctx, sym.String(), start, end)
		if errors.Is(err, yahoo.ErrNotFound) {
			return provider.PriceSeries{}, nil
		}
		if err != nil {
			return nil, a.fail("history", sym, err)
		}
		series := make(provider.PriceSeries, 0, len(closes))
		for _, c := range closes {
			series = append(series, provider.PricePoint{Date: c.Time, Close: c.Price})
		}
		return series, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(provider.PriceSeries), nil
}

// do runs fn once per key among concurrent callers. The shared lookup is
// detached from any single caller's cancellation and bounded by
// FlightTimeout; a caller whose ctx ends first gets ctx.Err() while the
// others keep waiting.
func (a *Adapter) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := a.sf.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.FlightTimeout)
		defer cancel()
		return fn(fctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (a *Adapter) fail(op string, sym symbols.Symbol, err error) error {
	var category error
	switch {
	case errors.Is(err, yahoo.ErrRateLimited):
		category = provider.ErrRateLimited
	case errors.Is(err, yahoo.ErrUnauthorized):
		category = provider.ErrUnauthorized
	}
	if category != nil {
		return fmt.Errorf("%s %s %s: %w: %w", a.cfg.Name, op, sym, category, err)
	}
	return fmt.Errorf("%s %s %s: %w", a.cfg.Name, op, sym, err)
}

func toSnapshot(sym symbols.Symbol, qs *yahoo.QuoteSummary) provider.Snapshot {
	s := provider.Snapshot{Symbol: sym, ReceivedAt: time.Now().UTC()}

	if qs.Price != nil {
		s.MarketCap = orZero(qs.Price.MarketCap)
	}
	if qs.SummaryDetail != nil {
		if s.MarketCap == 0 {
			s.MarketCap = orZero(qs.SummaryDetail.MarketCap)
		}
		s.TrailingPE = orZero(qs.SummaryDetail.TrailingPE)
		s.PriceToSales = orZero(qs.SummaryDetail.PriceToSalesTrailing12Months)
		s.AverageVolume = optional(qs.SummaryDetail.AverageVolume)
	}
	if s.PriceToSales == 0 && qs.DefaultKeyStatistics != nil {
		s.PriceToSales = orZero(qs.DefaultKeyStatistics.PriceToSalesTrailing12Months)
	}
	if qs.FinancialData != nil {
		s.TotalRevenue = orZero(qs.FinancialData.TotalRevenue)
		s.EBITDA = orZero(qs.FinancialData.Ebitda)
		s.RevenueGrowth = optional(qs.FinancialData.RevenueGrowth)
	}
	return s
}

func orZero(v *yahoo.Value) float64 {
	f, _ := v.Float()
	return f
}

func optional(v *yahoo.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}
