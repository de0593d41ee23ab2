package protocols

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"runtime"
	"time"

	"github.com/BatikanHyt/postbench/pkg/collector"
	"github.com/BatikanHyt/postbench/pkg/helpers"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency        = 100
	DefaultRequestsPerWorker  = 1000
	DefaultPoolMaxIdlePerHost = 100
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrWorkerFailed  = errors.New("worker failed")
)

// Config is read only once a run starts. Body is shared by every worker and
// must not be modified.
type Config struct {
	URL                string
	Body               []byte
	Concurrency        int
	RequestsPerWorker  int
	PoolMaxIdlePerHost int
	HTTP2              bool
}

// Validate normalizes the URL and checks the numeric settings.
func (c *Config) Validate() error {
	c.URL = helpers.NormalizeURL(c.URL)
	if c.URL == "" {
		return fmt.Errorf("%w: target url is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url %s has no host", ErrInvalidConfig, c.URL)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.RequestsPerWorker < 0 {
		return fmt.Errorf("%w: requests per worker must not be negative, got %d", ErrInvalidConfig, c.RequestsPerWorker)
	}
	if c.PoolMaxIdlePerHost < 1 {
		return fmt.Errorf("%w: pool size must be at least 1, got %d", ErrInvalidConfig, c.PoolMaxIdlePerHost)
	}
	return nil
}

// TotalRequests is the number of attempts a run makes.
func (c *Config) TotalRequests() int64 {
	return int64(c.Concurrency) * int64(c.RequestsPerWorker)
}

// Runner dispatches Concurrency workers, each posting RequestsPerWorker times
// in sequence through the shared Client, and joins them.
type Runner struct {
	Config *Config
	Client *Client
	Stats  *collector.Aggregator
	Logger *log.Logger
}

// NewRunner validates cfg and builds the shared client and the aggregator.
// Any error here is a setup failure: no worker has been started.
func NewRunner(cfg *Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := collector.NewAggregator()
	client, err := NewClient(cfg, stats)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Config: cfg,
		Client: client,
		Stats:  stats,
		Logger: log.New(os.Stderr, "", log.LstdFlags),
	}, nil
}

// Run blocks until every worker finished all its iterations. Failed requests
// are counted and never stop a worker. A worker that dies abnormally makes Run
// return an ErrWorkerFailed error and no result.
func (r *Runner) Run(ctx context.Context) (*collector.Result, error) {
	if r.Logger == nil {
		r.Logger = log.New(io.Discard, "", 0)
	}
	hist := collector.NewShardedHistogram(histogramShards(r.Config.Concurrency))
	var g errgroup.Group

	start := time.Now()
	for i := 0; i < r.Config.Concurrency; i++ {
		id := i
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: worker %d: %v", ErrWorkerFailed, id, p)
				}
			}()
			r.work(ctx, id, hist)
			return nil
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)
	r.Client.CloseIdleConnections()
	if err != nil {
		return nil, err
	}

	res := r.Stats.Result(elapsed, hist.Merged())
	res.RunID = uuid.NewV4().String()
	res.URL = r.Config.URL
	res.Concurrency = r.Config.Concurrency
	res.RequestsPerWorker = r.Config.RequestsPerWorker
	return res, nil
}

func (r *Runner) work(ctx context.Context, id int, hist *collector.ShardedHistogram) {
	for i := 0; i < r.Config.RequestsPerWorker; i++ {
		code, latency, err := r.Client.Post(ctx)
		if err != nil {
			r.Stats.AddFailure()
			r.Logger.Printf("worker %d: request %d failed: %v", id, i, err)
			continue
		}
		r.Stats.AddResponse(code, latency)
		hist.Record(id, latency)
	}
}

// histogramShards caps the latency histograms at one per usable CPU.
func histogramShards(concurrency int) int {
	if n := runtime.GOMAXPROCS(0); n < concurrency {
		return n
	}
	return concurrency
}
