package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "postbench"

type promCollector struct {
	stats *Aggregator

	success      *prometheus.Desc
	errors       *prometheus.Desc
	responses    *prometheus.Desc
	latencyTotal *prometheus.Desc
	latencyCount *prometheus.Desc
	latencyMin   *prometheus.Desc
	latencyMax   *prometheus.Desc
	bytesRead    *prometheus.Desc
	bytesWritten *prometheus.Desc
}

// NewPrometheusCollector exposes the aggregator counters. Values are read at
// scrape time straight from the atomics.
func NewPrometheusCollector(stats *Aggregator) prometheus.Collector {
	return &promCollector{
		stats: stats,
		success: prometheus.NewDesc(prometheus.BuildFQName(namespace, "requests", "success_total"),
			"Requests answered with a 2xx status.", nil, nil),
		errors: prometheus.NewDesc(prometheus.BuildFQName(namespace, "requests", "error_total"),
			"Requests answered with a non 2xx status or failed in transport.", nil, nil),
		responses: prometheus.NewDesc(prometheus.BuildFQName(namespace, "responses", "total"),
			"Responses received by status class.", []string{"class"}, nil),
		latencyTotal: prometheus.NewDesc(prometheus.BuildFQName(namespace, "latency", "seconds_total"),
			"Sum of the latency of every response.", nil, nil),
		latencyCount: prometheus.NewDesc(prometheus.BuildFQName(namespace, "latency", "samples_total"),
			"Number of latency samples.", nil, nil),
		latencyMin: prometheus.NewDesc(prometheus.BuildFQName(namespace, "latency", "min_seconds"),
			"Fastest response so far.", nil, nil),
		latencyMax: prometheus.NewDesc(prometheus.BuildFQName(namespace, "latency", "max_seconds"),
			"Slowest response so far.", nil, nil),
		bytesRead: prometheus.NewDesc(prometheus.BuildFQName(namespace, "transport", "read_bytes_total"),
			"Bytes read from target connections.", nil, nil),
		bytesWritten: prometheus.NewDesc(prometheus.BuildFQName(namespace, "transport", "written_bytes_total"),
			"Bytes written to target connections.", nil, nil),
	}
}

func (c *promCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.success
	ch <- c.errors
	ch <- c.responses
	ch <- c.latencyTotal
	ch <- c.latencyCount
	ch <- c.latencyMin
	ch <- c.latencyMax
	ch <- c.bytesRead
	ch <- c.bytesWritten
}

func (c *promCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats
	ch <- prometheus.MustNewConstMetric(c.success, prometheus.CounterValue, float64(s.Success()))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors()))
	for class := StatusClass(0); class < numStatusClasses; class++ {
		ch <- prometheus.MustNewConstMetric(c.responses, prometheus.CounterValue,
			float64(s.StatusCount(class)), class.String())
	}
	ch <- prometheus.MustNewConstMetric(c.latencyTotal, prometheus.CounterValue, s.TotalLatency().Seconds())
	ch <- prometheus.MustNewConstMetric(c.latencyCount, prometheus.CounterValue, float64(s.LatencySamples()))
	if fastest, ok := s.MinLatency(); ok {
		ch <- prometheus.MustNewConstMetric(c.latencyMin, prometheus.GaugeValue, fastest.Seconds())
		ch <- prometheus.MustNewConstMetric(c.latencyMax, prometheus.GaugeValue, s.MaxLatency().Seconds())
	}
	ch <- prometheus.MustNewConstMetric(c.bytesRead, prometheus.CounterValue, float64(s.BytesRead()))
	ch <- prometheus.MustNewConstMetric(c.bytesWritten, prometheus.CounterValue, float64(s.BytesWritten()))
}
