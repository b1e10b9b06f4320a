package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultModules are the quoteSummary modules that carry every snapshot field.
var DefaultModules = []string{"price", "summaryDetail", "financialData", "defaultKeyStatistics"}

// Value is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper. Raw is nil when the
// field is present but empty ({}).
type Value struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// Float returns the raw value and whether it was reported.
func (v *Value) Float() (float64, bool) {
	if v == nil || v.Raw == nil {
		return 0, false
	}
	return *v.Raw, true
}

// QuoteSummary holds the modules this project reads.
type QuoteSummary struct {
	Price *struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortName"`
		Currency  string `json:"currency"`
		MarketCap *Value `json:"marketCap"`
	} `json:"price"`
	SummaryDetail *struct {
		MarketCap                    *Value `json:"marketCap"`
		TrailingPE                   *Value `json:"trailingPE"`
		PriceToSalesTrailing12Months *Value `json:"priceToSalesTrailing12Months"`
		AverageVolume                *Value `json:"averageVolume"`
	} `json:"summaryDetail"`
	FinancialData *struct {
		TotalRevenue  *Value `json:"totalRevenue"`
		Ebitda        *Value `json:"ebitda"`
		RevenueGrowth *Value `json:"revenueGrowth"`
	} `json:"financialData"`
	DefaultKeyStatistics *struct {
		PriceToSalesTrailing12Months *Value `json:"priceToSalesTrailing12Months"`
	} `json:"defaultKeyStatistics"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummary `json:"result"`
		Error  *apiError      `json:"error"`
	} `json:"quoteSummary"`
}

// GetQuoteSummary retrieves the requested modules for one symbol.
// DefaultModules are used when none are given.
func (c *Client) GetQuoteSummary(ctx context.Context, symbol string, modules ...string) (*QuoteSummary, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, errors.New("empty symbol")
	}
	if len(modules) == 0 {
		modules = DefaultModules
	}
	params := url.Values{}
	params.Set("modules", strings.Join(modules, ","))

	var body quoteSummaryResponse
	if err := c.getWithCrumb(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &body); err != nil {
		return nil, err
	}
	if e := body.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("quoteSummary %s: %w", symbol, e)
	}
	if len(body.QuoteSummary.Result) == 0 {
		return nil, ErrNotFound
	}
	return &body.QuoteSummary.Result[0], nil
}
