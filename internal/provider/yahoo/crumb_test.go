package yahoo_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tickerweb/internal/provider/yahoo"
)

const (
	testBaseURL   = "https://query1.example.test"
	testCookieURL = "https://fc.example.test"
)

func textResponse(status int, body string, header http.Header) *http.Response {
	return &http.Response{StatusCode: status, Header: header, Body: io.NopCloser(strings.NewReader(body))}
}

func summaryBody() map[string]any {
	return map[string]any{
		"quoteSummary": map[string]any{"result": []any{map[string]any{
			"price": map[string]any{"marketCap": map[string]any{"raw": 1.5e9}},
		}}},
	}
}

func TestGetQuoteSummary_CrumbHandshake(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	var calls []string
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			crumb := req.URL.Query().Get("crumb")
			cookie, _ := req.Cookie("A3")
			switch {
			case req.URL.Host == "fc.example.test":
				calls = append(calls, "cookie")
				return textResponse(http.StatusNotFound, "", http.Header{
					"Set-Cookie": []string{"A3=session; Domain=example.test; Path=/"},
				}), nil
			case req.URL.Path == "/v1/test/getcrumb":
				calls = append(calls, "crumb")
				require.NotNil(t, cookie, "crumb request must carry the session cookie")
				require.Equal(t, "session", cookie.Value)
				return textResponse(http.StatusOK, "abc.DEF", nil), nil
			case crumb == "":
				calls = append(calls, "summary")
				return textResponse(http.StatusUnauthorized, `{"finance":{"error":{"description":"Invalid Crumb"}}}`, nil), nil
			default:
				calls = append(calls, "summary+crumb")
				require.Equal(t, "abc.DEF", crumb)
				require.NotNil(t, cookie)
				return jsonResponse(t, http.StatusOK, summaryBody()), nil
			}
		}).
		Times(5)

	client := yahoo.NewClient(
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithBaseURL(testBaseURL),
		yahoo.WithCookieURL(testCookieURL),
	)

	qs, err := client.GetQuoteSummary(t.Context(), "AAPL")
	require.NoError(t, err)
	mc, ok := qs.Price.MarketCap.Float()
	require.True(t, ok)
	require.InEpsilon(t, 1.5e9, mc, 1e-9)

	// the crumb is reused on the next call
	_, err = client.GetQuoteSummary(t.Context(), "MSFT")
	require.NoError(t, err)

	require.Equal(t, []string{"summary", "cookie", "crumb", "summary+crumb", "summary+crumb"}, calls)
}

func TestGetQuoteSummary_CrumbRejected(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			switch {
			case req.URL.Host == "fc.example.test":
				return textResponse(http.StatusNotFound, "", nil), nil
			case req.URL.Path == "/v1/test/getcrumb":
				return textResponse(http.StatusUnauthorized, "", nil), nil
			default:
				return textResponse(http.StatusUnauthorized, "", nil), nil
			}
		}).
		Times(3)

	client := yahoo.NewClient(
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithBaseURL(testBaseURL),
		yahoo.WithCookieURL(testCookieURL),
	)
	_, err := client.GetQuoteSummary(t.Context(), "AAPL")
	require.ErrorIs(t, err, yahoo.ErrUnauthorized)
}

func TestGetQuoteSummary_MalformedCrumb(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			switch {
			case req.URL.Host == "fc.example.test":
				return textResponse(http.StatusNotFound, "", nil), nil
			case req.URL.Path == "/v1/test/getcrumb":
				return textResponse(http.StatusOK, "<html>consent</html>", nil), nil
			default:
				return textResponse(http.StatusUnauthorized, "", nil), nil
			}
		}).
		Times(3)

	client := yahoo.NewClient(
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithBaseURL(testBaseURL),
		yahoo.WithCookieURL(testCookieURL),
	)
	_, err := client.GetQuoteSummary(t.Context(), "AAPL")
	require.ErrorIs(t, err, yahoo.ErrUnauthorized)
	require.NotContains(t, err.Error(), "consent")
}
