// Package format renders provider figures as display strings.
package format

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable marks a value that could not be obtained or computed.
const NotAvailable = "N/A"

var (
	printer  = message.NewPrinter(language.English)
	thousand = decimal.NewFromInt(1000)
)

// toMillions divides by one million and rounds half to even.
func toMillions(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v / 1_000_000).RoundBank(0)
}

// MarketCap renders a dollar amount in millions. Below one billion it keeps
// two decimals ("$950.00M"), otherwise none ("$1,500M").
func MarketCap(v float64) string {
	m := toMillions(v)
	if m.LessThan(thousand) {
		return printer.Sprintf("$%.2fM", m.InexactFloat64())
	}
	return printer.Sprintf("$%dM", m.IntPart())
}

// Millions renders revenue or EBITDA as "$X,XXXM".
func Millions(v float64) string {
	return printer.Sprintf("$%dM", toMillions(v).IntPart())
}

// Ratio renders P/E and P/S with two decimals.
func Ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Volatility renders an annualized volatility with three decimals, or N/A
// when there was not enough history.
func Volatility(v float64, ok bool) string {
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Percent renders a fraction (0.1234) as "12.34%".
func Percent(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v*100, 'f', 2, 64) + "%"
}

// Volume renders a share count with thousands separators.
func Volume(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return printer.Sprintf("%d", decimal.NewFromFloat(*v).RoundBank(0).IntPart())
}
