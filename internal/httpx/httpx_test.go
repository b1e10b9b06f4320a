package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDo_DefaultsDoNotOverrideRequestHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept, gotX string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA, gotAccept, gotX = r.Header.Get("User-Agent"), r.Header.Get("Accept"), r.Header.Get("X-Test")
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	c.UserAgent = "tickerweb/1.0"
	c.Headers = map[string]string{"Accept": "application/json", "X-Test": "default"}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Test", "explicit")

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, "tickerweb/1.0", gotUA)
	require.Equal(t, "application/json", gotAccept)
	require.Equal(t, "explicit", gotX)
}

func TestNew_Timeout(t *testing.T) {
	t.Parallel()

	c := New(5 * time.Second)
	require.Equal(t, 5*time.Second, c.HTTP.Timeout)
}
