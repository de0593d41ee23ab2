package collector

import "time"

// Result is computed once after every worker joined. It is read only.
type Result struct {
	RunID             string           `json:"run_id"`
	URL               string           `json:"url"`
	Concurrency       int              `json:"concurrency"`
	RequestsPerWorker int              `json:"requests_per_worker"`
	Total             int64            `json:"total"`
	Success           int64            `json:"success"`
	Errors            int64            `json:"errors"`
	Statuses          map[string]int64 `json:"statuses"`
	Elapsed           time.Duration    `json:"-"`
	ElapsedSeconds    float64          `json:"elapsed_seconds"`
	Throughput        float64          `json:"throughput_rps"`
	LatencySamples    int64            `json:"latency_samples"`
	HasLatency        bool             `json:"has_latency"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	MinLatencyMs      float64          `json:"min_latency_ms"`
	MaxLatencyMs      float64          `json:"max_latency_ms"`
	P50LatencyMs      float64          `json:"p50_latency_ms"`
	P90LatencyMs      float64          `json:"p90_latency_ms"`
	P99LatencyMs      float64          `json:"p99_latency_ms"`
	BytesWritten      int64            `json:"bytes_written"`
	BytesRead         int64            `json:"bytes_read"`
}

// Result derives the run statistics. elapsed is the spawn-to-join window.
// hist may be nil, in which case percentiles stay zero.
//
// The average divides total latency by the number of latency samples, i.e.
// every request that got a response whatever its status, so that the
// numerator and the denominator describe the same population.
func (a *Aggregator) Result(elapsed time.Duration, hist *LatencyHistogram) *Result {
	res := &Result{
		Success:        a.Success(),
		Errors:         a.Errors(),
		Statuses:       make(map[string]int64),
		Elapsed:        elapsed,
		ElapsedSeconds: elapsed.Seconds(),
		LatencySamples: a.LatencySamples(),
		BytesWritten:   a.BytesWritten(),
		BytesRead:      a.BytesRead(),
	}
	res.Total = res.Success + res.Errors
	if elapsed > 0 {
		res.Throughput = float64(res.Total) / elapsed.Seconds()
	}
	for class := StatusClass(0); class < numStatusClasses; class++ {
		if n := a.StatusCount(class); n > 0 {
			res.Statuses[class.String()] = n
		}
	}

	samples := res.LatencySamples
	if samples < 1 {
		samples = 1
	}
	res.AvgLatencyMs = toMillis(time.Duration(int64(a.TotalLatency()) / samples))
	if fastest, ok := a.MinLatency(); ok {
		res.HasLatency = true
		res.MinLatencyMs = toMillis(fastest)
		res.MaxLatencyMs = toMillis(a.MaxLatency())
	}
	if hist != nil && res.HasLatency {
		res.P50LatencyMs = toMillis(hist.Quantile(50))
		res.P90LatencyMs = toMillis(hist.Quantile(90))
		res.P99LatencyMs = toMillis(hist.Quantile(99))
	}
	return res
}

// TransferRate is the bytes moved in both directions per second.
func (r *Result) TransferRate() float64 {
	if r.ElapsedSeconds <= 0 {
		return 0
	}
	return float64(r.BytesRead+r.BytesWritten) / r.ElapsedSeconds
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
