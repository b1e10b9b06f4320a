package main

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tickerweb/internal/provider"
	"tickerweb/internal/symbols"
)

type panicProvider struct{}

func (panicProvider) Name() string { return "panic" }
func (panicProvider) Snapshot(context.Context, symbols.Symbol) (provider.Snapshot, error) {
	panic("boom")
}
func (panicProvider) History(context.Context, symbols.Symbol, time.Time, time.Time) (provider.PriceSeries, error) {
	return nil, nil
}

func TestRecoverPanic(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, panicProvider{})

	res, err := http.Get(ts.URL + "/api/quotes?symbols=aapl")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestWithGzip(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, newFake())

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, "gzip", res.Header.Get("Content-Encoding"))
	zr, err := gzip.NewReader(res.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}

func TestLimitBody(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, newFake())

	big := `{"symbols":["` + strings.Repeat("A", 4<<10) + `"]}`
	res, err := http.Post(ts.URL+"/api/quotes", "application/json", strings.NewReader(big))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRequestLog(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	h := requestLog(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loggerFrom(r.Context(), zap.NewNop()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "inside", entries[0].Message)
	require.Equal(t, "abc", entries[0].ContextMap()["request_id"])
	require.Equal(t, "request", entries[1].Message)
	require.EqualValues(t, http.StatusTeapot, entries[1].ContextMap()["status"])
}

func TestWithGzip_NoBodyResponses(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, newFake())

	for _, tt := range []struct {
		method, target string
		status         int
	}{
		{http.MethodOptions, "/api/quotes", http.StatusNoContent},
		{http.MethodHead, "/healthz", http.StatusOK},
	} {
		req, err := http.NewRequest(tt.method, ts.URL+tt.target, nil)
		require.NoError(t, err)
		req.Header.Set("Accept-Encoding", "gzip")
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		require.NoError(t, err)

		require.Equal(t, tt.status, res.StatusCode, tt.method)
		require.Empty(t, res.Header.Get("Content-Encoding"), tt.method)
		require.Empty(t, body, tt.method)
	}
}

func TestGzipResponseWriter_SkipsNoContent(t *testing.T) {
	t.Parallel()

	h := withGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/x", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Encoding"))
	require.Zero(t, rec.Body.Len())
}
