package report

import (
	"fmt"
	"regexp"

	"tickerweb/internal/symbols"
)

var quotePath = regexp.MustCompile(`/quote/([^/]+)/`)

// QuoteURL fills the symbol into a template such as DefaultQuoteURLTemplate.
func QuoteURL(template string, sym symbols.Symbol) string {
	return fmt.Sprintf(template, sym)
}

// LinkText is the visible text for a quote link: the path segment between
// "/quote/" and the trailing slash. URLs that do not match are shown as is.
func LinkText(url string) string {
	m := quotePath.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	return m[1]
}
