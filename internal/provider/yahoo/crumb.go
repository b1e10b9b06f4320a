package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const crumbPath = "/v1/test/getcrumb"

// getWithCrumb is get for endpoints that require a session cookie and crumb.
// The crumb is fetched on the first unauthorized answer and reused until the
// server rejects it again, at which point it is refreshed once per call.
func (c *Client) getWithCrumb(ctx context.Context, path string, params url.Values, out any) error {
	crumb := c.currentCrumb()
	err := c.get(ctx, path, withCrumb(params, crumb), out)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	fresh, cerr := c.refreshCrumb(ctx, crumb)
	if cerr != nil {
		return cerr
	}
	return c.get(ctx, path, withCrumb(params, fresh), out)
}

func withCrumb(params url.Values, crumb string) url.Values {
	if crumb == "" {
		return params
	}
	out := url.Values{}
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	out.Set("crumb", crumb)
	return out
}

func (c *Client) currentCrumb() string {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	return c.crumb
}

// refreshCrumb replaces stale with a new crumb. Concurrent callers holding
// the same stale crumb share one handshake.
func (c *Client) refreshCrumb(ctx context.Context, stale string) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	if c.crumb != "" && c.crumb != stale {
		return c.crumb, nil
	}

	if err := c.fetchCookie(ctx); err != nil {
		return "", err
	}
	crumb, err := c.fetchCrumb(ctx)
	if err != nil {
		return "", err
	}
	c.crumb = crumb
	c.logger.Debug("crumb refreshed")
	return crumb, nil
}

// fetchCookie visits cookieURL for its Set-Cookie headers. The status is
// ignored; the endpoint answers 404 while still setting the cookie.
func (c *Client) fetchCookie(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cookieURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating cookie request: %w", err)
	}
	res, err := c.send(req)
	if err != nil {
		return fmt.Errorf("fetching session cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	return res.Body.Close()
}

func (c *Client) fetchCrumb(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+crumbPath, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating crumb request: %w", err)
	}
	res, err := c.send(req)
	if err != nil {
		return "", fmt.Errorf("fetching crumb: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	default:
		c.logger.Warn("crumb rejected", zap.Int("status", res.StatusCode))
		return "", fmt.Errorf("crumb status %d: %w", res.StatusCode, ErrUnauthorized)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, 256))
	if err != nil {
		return "", fmt.Errorf("reading crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(b))
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", fmt.Errorf("malformed crumb: %w", ErrUnauthorized)
	}
	return crumb, nil
}
