// Package stats derives return statistics from daily closing prices.
package stats

import (
	"errors"
	"math"
)

// TradingDaysPerYear is the annualization factor for daily returns.
const TradingDaysPerYear = 252

// ErrInsufficientData is returned when a series is too short to yield a
// sample standard deviation. Callers must not treat it as zero volatility.
var ErrInsufficientData = errors.New("stats: insufficient data")

// DailyReturns computes simple returns p[i]/p[i-1] - 1. Pairs whose previous
// price is not a positive finite number are skipped.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || math.IsNaN(prev) || math.IsInf(prev, 0) || math.IsNaN(cur) || math.IsInf(cur, 0) {
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// SampleStdDev is the unbiased (n-1) standard deviation. It needs at least two values.
func SampleStdDev(xs []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, ErrInsufficientData
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1)), nil
}

// AnnualizedVolatility is the sample std dev of daily returns scaled by sqrt(252).
func AnnualizedVolatility(closes []float64) (float64, error) {
	sd, err := SampleStdDev(DailyReturns(closes))
	if err != nil {
		return 0, err
	}
	return sd * math.Sqrt(TradingDaysPerYear), nil
}
