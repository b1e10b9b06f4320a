package ratelimit

import (
	"context"
	"sync"
	"time"

	"tickerweb/internal/provider"
	"tickerweb/internal/symbols"
)

// TokenBucket admits rate calls per second on average and up to capacity
// calls back to back. It is shared by every batch the process runs.
type TokenBucket struct {
	rate     float64
	capacity float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
	if tokensPerSecond <= 0 {
		tokensPerSecond = 0.0000001
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		rate:     tokensPerSecond,
		capacity: float64(burst),
		tokens:   float64(burst), // start full to allow an initial burst
		last:     time.Now(),
	}
}

// Wait blocks until one token is available or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		due := tb.take()
		if due == 0 {
			return nil
		}
		timer := time.NewTimer(due)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take consumes a token and returns zero, or returns how long until the
// next token accrues.
func (tb *TokenBucket) take() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.rate)
		tb.last = now
	}
	if tb.tokens >= 1 {
		tb.tokens--
		return 0
	}
	due := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
	return max(due, time.Millisecond)
}

// TokenBucketProvider wraps a Provider and gates every call, snapshot or
// history, on one token.
type TokenBucketProvider struct {
	P  provider.Provider
	TB *TokenBucket
}

func (t *TokenBucketProvider) Name() string { return t.P.Name() }

func (t *TokenBucketProvider) Snapshot(ctx context.Context, sym symbols.Symbol) (provider.Snapshot, error) {
	if t.TB != nil {
		if err := t.TB.Wait(ctx); err != nil {
			return provider.Snapshot{Symbol: sym}, err
		}
	}
	return t.P.Snapshot(ctx, sym)
}

func (t *TokenBucketProvider) History(ctx context.Context, sym symbols.Symbol, start, end time.Time) (provider.PriceSeries, error) {
	if t.TB != nil {
		if err := t.TB.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return t.P.History(ctx, sym, start, end)
}

// Wrap applies the limiter the settings ask for: a token bucket when
// perMinute > 0, otherwise a min interval when interval > 0, otherwise p as is.
func Wrap(p provider.Provider, perMinute, burst int, interval time.Duration) provider.Provider {
	if perMinute > 0 {
		if burst <= 0 {
			burst = 1
		}
		return &TokenBucketProvider{P: p, TB: NewTokenBucket(float64(perMinute)/60.0, burst)}
	}
	if interval > 0 {
		return &MinInterval{P: p, Interval: interval}
	}
	return p
}
