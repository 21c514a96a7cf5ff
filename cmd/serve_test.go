package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zagros-analytics/suitability-cli/internal/model"
	"github.com/zagros-analytics/suitability-cli/internal/store"
)

func TestParseCoords(t *testing.T) {
	flat, err := parseCoords([]byte(`[[45.2,35.5],[45.3,35.5],[45.3,35.6]]`))
	require.NoError(t, err)
	assert.Len(t, flat, 3)
	assert.Equal(t, []float64{45.2, 35.5}, flat[0])

	nested, err := parseCoords([]byte(`[[[45.2,35.5],[45.3,35.5],[45.3,35.6],[45.2,35.5]]]`))
	require.NoError(t, err)
	assert.Len(t, nested, 4)

	_, err = parseCoords([]byte(`{"not": "coords"}`))
	assert.Error(t, err)
}

func TestDateRange(t *testing.T) {
	dates, err := dateRange("2024-06-01", 3, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-01", "2024-06-08", "2024-06-15"}, dates)

	_, err = dateRange("June 1st", 3, 7)
	assert.Error(t, err)

	_, err = dateRange("2024-06-01", 0, 7)
	assert.Error(t, err)
}

func TestHandleIndexLatest(t *testing.T) {
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(t.Context()))

	handler := handleIndexLatest(s)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/v1/index/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, s.SaveComposite(t.Context(), []model.CompositeResult{
		{GridID: 0, Date: "2024-06-01", Score: 25, Category: "Good", WeightSum: 1, Defined: true},
	}))

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/v1/index/latest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"2024-06-01"`)
	assert.Contains(t, rec.Body.String(), `"Good"`)
}

func TestShutdownOnCancelDrainsInFlightRequests(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	drained := make(chan struct{})
	go func() {
		shutdownOnCancel(ctx, srv)
		close(drained)
	}()
	go srv.Serve(ln) //nolint:errcheck

	got := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			got <- 0
			return
		}
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()              //nolint:errcheck
		got <- resp.StatusCode
	}()

	// Cancel only once the request is in flight; the drain must let it
	// finish instead of cutting the connection.
	<-started
	cancel()
	close(release)

	assert.Equal(t, http.StatusOK, <-got)
	<-drained
}
