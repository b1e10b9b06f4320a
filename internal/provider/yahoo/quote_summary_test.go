package yahoo_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tickerweb/internal/provider/yahoo"
)

var mockQuoteSummaryResponse = map[string]any{
	"quoteSummary": map[string]any{
		"result": []any{
			map[string]any{
				"price": map[string]any{
					"symbol":    "AAPL",
					"shortName": "Apple Inc.",
					"currency":  "USD",
					"marketCap": map[string]any{"raw": 2.985e12, "fmt": "2.98T"},
				},
				"summaryDetail": map[string]any{
					"trailingPE":                   map[string]any{"raw": 29.87, "fmt": "29.87"},
					"priceToSalesTrailing12Months": map[string]any{"raw": 7.79, "fmt": "7.79"},
					"averageVolume":                map[string]any{"raw": 54210300, "fmt": "54.21M"},
				},
				"financialData": map[string]any{
					"totalRevenue":  map[string]any{"raw": 3.83285e11, "fmt": "383.29B"},
					"ebitda":        map[string]any{"raw": 1.25820e11, "fmt": "125.82B"},
					"revenueGrowth": map[string]any{},
				},
			},
		},
		"error": nil,
	},
}

func TestGetQuoteSummary(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock HTTP client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/v10/finance/quoteSummary/AAPL", req.URL.Path)
			require.Equal(t, "price,summaryDetail,financialData,defaultKeyStatistics", req.URL.Query().Get("modules"))
			return jsonResponse(t, http.StatusOK, mockQuoteSummaryResponse), nil
		}).
		Times(1)

	client := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))

	// Act
	qs, err := client.GetQuoteSummary(t.Context(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, qs)

	// Assert: fields decode, empty wrappers stay unreported
	mc, ok := qs.Price.MarketCap.Float()
	require.True(t, ok)
	require.InEpsilon(t, 2.985e12, mc, 1e-9)

	pe, ok := qs.SummaryDetail.TrailingPE.Float()
	require.True(t, ok)
	require.InEpsilon(t, 29.87, pe, 1e-9)

	_, ok = qs.FinancialData.RevenueGrowth.Float()
	require.False(t, ok)

	require.Nil(t, qs.DefaultKeyStatistics)
}

func TestGetQuoteSummary_ErrorEnvelope(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(t, http.StatusOK, map[string]any{
			"quoteSummary": map[string]any{
				"result": nil,
				"error":  map[string]any{"code": "Not Found", "description": "Quote not found for ticker symbol: ZZZZ"},
			},
		}), nil).
		Times(1)

	client := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	_, err := client.GetQuoteSummary(t.Context(), "ZZZZ")
	require.ErrorIs(t, err, yahoo.ErrNotFound)
}

func TestGetQuoteSummary_CustomModules(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "price", req.URL.Query().Get("modules"))
			return jsonResponse(t, http.StatusOK, mockQuoteSummaryResponse), nil
		}).
		Times(1)

	client := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	_, err := client.GetQuoteSummary(t.Context(), "AAPL", "price")
	require.NoError(t, err)
}

func TestValue_FloatNil(t *testing.T) {
	t.Parallel()

	var v *yahoo.Value
	f, ok := v.Float()
	require.False(t, ok)
	require.Zero(t, f)
}
