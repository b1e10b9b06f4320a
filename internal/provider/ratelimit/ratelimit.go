package ratelimit

import (
	"context"
	"sync"
	"time"

	"tickerweb/internal/provider"
	"tickerweb/internal/symbols"
)

// MinInterval wraps a provider and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Snapshot(ctx context.Context, sym symbols.Symbol) (provider.Snapshot, error) {
	if err := m.wait(ctx); err != nil {
		return provider.Snapshot{Symbol: sym}, err
	}
	defer m.mark()
	return m.P.Snapshot(ctx, sym)
}

func (m *MinInterval) History(ctx context.Context, sym symbols.Symbol, start, end time.Time) (provider.PriceSeries, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	defer m.mark()
	return m.P.History(ctx, sym, start, end)
}

func (m *MinInterval) wait(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	wait := time.Until(m.last.Add(m.Interval))
	m.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MinInterval) mark() {
	if m.Interval <= 0 {
		return
	}
	m.mu.Lock()
	m.last = time.Now()
	m.mu.Unlock()
}
