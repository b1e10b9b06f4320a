package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tickerweb/internal/config"
	"tickerweb/internal/provider/ratelimit"
)

func TestNewProvider_YahooOnly(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	p, err := NewProvider(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "Yahoo", p.Name())
	require.IsType(t, &ratelimit.TokenBucketProvider{}, p)
}

func TestNewProvider_AlpacaHistory(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.History.Source = "alpaca"
	cfg.Alpaca.APIKey = "k"
	cfg.Alpaca.APISecret = "s"
	cfg.Provider.MaxRequestsPerMinute = 0
	cfg.Provider.MinRequestInterval = 0

	p, err := NewProvider(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "Yahoo+Alpaca", p.Name())
}

func TestNewProvider_AlpacaWithoutCredentials(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.History.Source = "alpaca"
	_, err := NewProvider(cfg, zap.NewNop())
	require.ErrorIs(t, err, ErrMissingAlpacaCredentials)
}

func TestReportOptions(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Provider.CallTimeout = 2 * time.Second
	opts := ReportOptions(cfg, zap.NewNop())
	require.Equal(t, 366, opts.LookbackDays)
	require.Equal(t, 2*time.Second, opts.CallTimeout)
	require.Equal(t, "https://finance.yahoo.com/quote/%s/", opts.QuoteURLTemplate)
}
