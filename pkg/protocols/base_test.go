package protocols

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/BatikanHyt/postbench/pkg/collector"
	"github.com/BatikanHyt/postbench/pkg/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, url string, concurrency, requests int) (*Runner, *bytes.Buffer) {
	t.Helper()
	cfg := &Config{
		URL:                url,
		Body:               []byte(`{"hello":"world"}`),
		Concurrency:        concurrency,
		RequestsPerWorker:  requests,
		PoolMaxIdlePerHost: DefaultPoolMaxIdlePerHost,
	}
	r, err := NewRunner(cfg)
	require.NoError(t, err)
	var logs bytes.Buffer
	r.Logger = log.New(&logs, "", 0)
	return r, &logs
}

func TestRunAllSuccess(t *testing.T) {
	assert := assert.New(t)
	h := &echo.Handler{}
	server := httptest.NewServer(h)
	defer server.Close()

	r, logs := newTestRunner(t, server.URL, 4, 10)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(int64(40), res.Total)
	assert.Equal(int64(40), res.Success)
	assert.Zero(res.Errors)
	assert.Equal(int64(40), h.Requests(), "every attempt reaches the server exactly once")
	assert.Equal(int64(40*len(`{"hello":"world"}`)), h.BytesReceived())
	assert.Equal(int64(40), res.LatencySamples)
	assert.True(res.HasLatency)
	assert.Greater(res.MinLatencyMs, 0.0)
	assert.LessOrEqual(res.MinLatencyMs, res.AvgLatencyMs)
	assert.LessOrEqual(res.AvgLatencyMs, res.MaxLatencyMs)
	assert.InDelta(float64(res.Total)/res.Elapsed.Seconds(), res.Throughput, 1e-6)
	assert.NotEmpty(res.RunID)
	assert.Equal(4, res.Concurrency)
	assert.Equal(10, res.RequestsPerWorker)
	assert.Greater(res.BytesWritten, int64(0))
	assert.Greater(res.BytesRead, int64(0))
	assert.Empty(logs.String())
}

func TestRunAllServerErrors(t *testing.T) {
	assert := assert.New(t)
	server := httptest.NewServer(&echo.Handler{Status: http.StatusInternalServerError})
	defer server.Close()

	r, logs := newTestRunner(t, server.URL, 2, 5)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(int64(10), res.Total)
	assert.Zero(res.Success)
	assert.Equal(int64(10), res.Errors)
	assert.Equal(int64(10), res.LatencySamples, "error responses are still latency samples")
	assert.Equal(int64(10), res.Statuses["5xx"])
	assert.True(res.HasLatency)
	assert.Empty(logs.String(), "status errors are not logged")
}

func TestRunUnreachableTarget(t *testing.T) {
	assert := assert.New(t)
	server := httptest.NewServer(&echo.Handler{})
	url := server.URL
	server.Close()

	r, logs := newTestRunner(t, url, 3, 5)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(int64(15), res.Total)
	assert.Zero(res.Success)
	assert.Equal(int64(15), res.Errors)
	assert.Zero(res.LatencySamples)
	assert.False(res.HasLatency)
	assert.Zero(res.AvgLatencyMs)
	_, ok := r.Stats.MinLatency()
	assert.False(ok, "min keeps its sentinel")
	assert.Equal(15, strings.Count(logs.String(), "\n"), "one diagnostic line per failed request")
	assert.Contains(logs.String(), "request 4 failed")
}

func TestRunZeroRequests(t *testing.T) {
	assert := assert.New(t)
	h := &echo.Handler{}
	server := httptest.NewServer(h)
	defer server.Close()

	r, _ := newTestRunner(t, server.URL, 5, 0)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(res.Total)
	assert.Zero(h.Requests())
	assert.False(res.HasLatency)
	assert.Zero(res.AvgLatencyMs)
}

func TestRunManyIdleWorkersStaysSmall(t *testing.T) {
	server := httptest.NewServer(&echo.Handler{})
	defer server.Close()

	r, _ := newTestRunner(t, server.URL, 10000, 0)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	runtime.ReadMemStats(&after)

	assert.Zero(t, res.Total)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20),
		"latency histograms must not grow with the worker count")
}

func TestHistogramShards(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	assert.Equal(t, 1, histogramShards(1))
	assert.Equal(t, procs, histogramShards(procs+10000))
	assert.LessOrEqual(t, histogramShards(3), 3)
}

func TestRunFailureIsolation(t *testing.T) {
	assert := assert.New(t)
	h := &echo.Handler{FailOdd: true}
	server := httptest.NewServer(h)
	defer server.Close()

	r, _ := newTestRunner(t, server.URL, 5, 20)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(int64(100), res.Total)
	assert.Equal(int64(50), res.Success)
	assert.Equal(int64(50), res.Errors)
	assert.Equal(res.Success+res.Errors, res.Total)
}

func TestRunAttemptsMatrix(t *testing.T) {
	server := httptest.NewServer(&echo.Handler{})
	defer server.Close()

	for _, tc := range []struct{ n, r int }{{1, 0}, {1, 1}, {3, 7}, {8, 3}} {
		r, _ := newTestRunner(t, server.URL, tc.n, tc.r)
		res, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(tc.n*tc.r), res.Total, "N=%d R=%d", tc.n, tc.r)
		assert.Equal(t, res.Total, res.Success+res.Errors)
	}
}

type panicTransport struct{}

func (panicTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("transport exploded")
}

func TestRunWorkerFailure(t *testing.T) {
	cfg := &Config{URL: "http://127.0.0.1:1/", Concurrency: 3, RequestsPerWorker: 2, PoolMaxIdlePerHost: 1}
	r := &Runner{
		Config: cfg,
		Client: &Client{http: &http.Client{Transport: panicTransport{}}, url: cfg.URL},
		Stats:  collector.NewAggregator(),
	}

	res, err := r.Run(context.Background())

	assert.Nil(t, res, "no result when a worker dies")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkerFailed)
	assert.Contains(t, err.Error(), "transport exploded")
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{URL: " HTTP://LocalHost:8080/Post ", Concurrency: 1, RequestsPerWorker: 0, PoolMaxIdlePerHost: 1}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8080/post", cfg.URL)
	assert.Equal(t, int64(0), cfg.TotalRequests())

	cases := map[string]func(c *Config){
		"empty url":        func(c *Config) { c.URL = "  " },
		"bad scheme":       func(c *Config) { c.URL = "ftp://host/" },
		"no host":          func(c *Config) { c.URL = "http:///path" },
		"zero concurrency": func(c *Config) { c.Concurrency = 0 },
		"negative reqs":    func(c *Config) { c.RequestsPerWorker = -1 },
		"zero pool":        func(c *Config) { c.PoolMaxIdlePerHost = 0 },
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(cfg)
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	r, err := NewRunner(&Config{URL: "http://localhost/", Concurrency: 0, PoolMaxIdlePerHost: 1})
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
