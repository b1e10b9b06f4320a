package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Close is one daily closing price.
type Close struct {
	Time  time.Time
	Price float64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// GetChart retrieves daily closes in [start, end), oldest first. Null closes
// (halted days, partial data) are dropped. A symbol with no trading data in
// range yields an empty slice, not an error.
func (c *Client) GetChart(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, errors.New("empty symbol")
	}
	if !end.After(start) {
		return nil, fmt.Errorf("invalid range: %s..%s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")

	var body chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &body); err != nil {
		return nil, err
	}
	if e := body.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("chart %s: %w", symbol, e)
	}
	if len(body.Chart.Result) == 0 {
		return []Close{}, nil
	}

	r := body.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return []Close{}, nil
	}
	closes := r.Indicators.Quote[0].Close
	n := min(len(r.Timestamp), len(closes))
	out := make([]Close, 0, n)
	for i := 0; i < n; i++ {
		if closes[i] == nil {
			continue
		}
		out = append(out, Close{Time: time.Unix(r.Timestamp[i], 0).UTC(), Price: *closes[i]})
	}
	return out, nil
}
