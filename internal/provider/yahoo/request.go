package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// apiError is the error envelope shared by quoteSummary and chart.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// get performs a GET against path with the given query and decodes the JSON
// body into out. Status codes map onto the package sentinels.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	query := maps.Clone(c.query)
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	started := time.Now()
	res, err := c.send(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	c.logger.Debug("request",
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return ErrNotFound

	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized

	case http.StatusTooManyRequests:
		c.logger.Warn("rate limited", zap.String("path", path))
		return ErrRateLimited

	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, string(b))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		c.logger.Warn("decode failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// send applies the default headers and session cookies to req, performs it
// and keeps any cookies the response sets.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	req.Header = c.header.Clone()
	for _, ck := range c.jar.Cookies(req.URL) {
		req.AddCookie(ck)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if cks := res.Cookies(); len(cks) > 0 {
		c.jar.SetCookies(req.URL, cks)
	}
	return res, nil
}
