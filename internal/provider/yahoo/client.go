package yahoo

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/publicsuffix"
)

const baseURL = "https://query1.finance.yahoo.com"

// cookieURL hands out the session cookie the crumb is bound to.
const cookieURL = "https://fc.yahoo.com"

// defaultUserAgent avoids the bot wall Yahoo puts in front of Go's default agent.
const defaultUserAgent = "Mozilla/5.0 (compatible; tickerweb/1.0)"

var (
	ErrNotFound     = errors.New("yahoo: symbol not found")
	ErrRateLimited  = errors.New("yahoo: rate limited")
	ErrUnauthorized = errors.New("yahoo: unauthorized")
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Yahoo Finance query API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	// logger receives request diagnostics.
	logger *zap.Logger
	// quiet drops diagnostics below warn level.
	quiet bool

	// cookieURL is fetched once to obtain the session cookie.
	cookieURL string
	// jar keeps session cookies across requests whatever HTTPClient is used.
	jar http.CookieJar

	crumbMu sync.Mutex
	crumb   string
}

// Option is a configuration option for the Yahoo client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			c.header.Del(key)
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithQuery sets additional query parameters to be sent with each request.
func WithQuery(query url.Values) Option {
	return func(c *Client) {
		for key, values := range query {
			for _, value := range values {
				c.query.Add(key, value)
			}
		}
	}
}

// WithCookieURL sets the URL that issues the session cookie.
func WithCookieURL(cookieURL string) Option {
	return func(c *Client) {
		c.cookieURL = cookieURL
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithQuiet suppresses provider diagnostics below warn level.
func WithQuiet(quiet bool) Option {
	return func(c *Client) {
		c.quiet = quiet
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(options ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{"User-Agent": []string{defaultUserAgent}},
		query:      url.Values{},
		logger:     zap.NewNop(),
		cookieURL:  cookieURL,
	}
	// cookiejar.New never returns an error
	c.jar, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	for _, option := range options {
		option(c)
	}
	if c.quiet {
		c.logger = c.logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}
	c.logger = c.logger.Named("yahoo")
	return c
}
