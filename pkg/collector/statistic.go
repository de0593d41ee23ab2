package collector

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"
)

type StatusClass int

const (
	Status1xx StatusClass = iota
	Status2xx
	Status3xx
	Status4xx
	Status5xx
	StatusOther
	numStatusClasses
)

var statusClassNames = [numStatusClasses]string{"1xx", "2xx", "3xx", "4xx", "5xx", "other"}

func (s StatusClass) String() string {
	if s < 0 || s >= numStatusClasses {
		return "other"
	}
	return statusClassNames[s]
}

func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 100 && code < 200:
		return Status1xx
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	}
	return StatusOther
}

// Aggregator holds the counters every worker updates after every request.
// Each update is a single atomic operation. There is no transaction across
// counters, so a reader running concurrently with workers may see a snapshot
// that never existed as a whole. Read the counters after the workers joined to
// get exact values.
type Aggregator struct {
	success      atomic.Int64
	errors       atomic.Int64
	samples      atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
	minLatency   atomic.Int64
	maxLatency   atomic.Int64
	statuses     [numStatusClasses]atomic.Int64
	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
}

func NewAggregator() *Aggregator {
	a := &Aggregator{}
	a.minLatency.Store(math.MaxInt64)
	return a
}

// AddResponse records a request that received a response. The latency sample
// is kept whatever the status; only 2xx counts as a success.
func (a *Aggregator) AddResponse(code int, latency time.Duration) {
	ns := int64(latency)
	if ns < 0 {
		ns = 0
	}
	a.totalLatency.Add(ns)
	a.samples.Add(1)
	reduceMin(&a.minLatency, ns)
	reduceMax(&a.maxLatency, ns)

	class := ClassifyStatus(code)
	a.statuses[class].Add(1)
	if class == Status2xx {
		a.success.Add(1)
	} else {
		a.errors.Add(1)
	}
}

// AddFailure records a request that never got a response.
func (a *Aggregator) AddFailure() {
	a.errors.Add(1)
}

func (a *Aggregator) AddBytesRead(n int64) {
	a.bytesRead.Add(n)
}

func (a *Aggregator) AddBytesWritten(n int64) {
	a.bytesWritten.Add(n)
}

func (a *Aggregator) Success() int64 { return a.success.Load() }

func (a *Aggregator) Errors() int64 { return a.errors.Load() }

func (a *Aggregator) Attempts() int64 { return a.success.Load() + a.errors.Load() }

func (a *Aggregator) LatencySamples() int64 { return a.samples.Load() }

func (a *Aggregator) TotalLatency() time.Duration { return time.Duration(a.totalLatency.Load()) }

// MinLatency returns false when no sample was recorded yet.
func (a *Aggregator) MinLatency() (time.Duration, bool) {
	v := a.minLatency.Load()
	if v == math.MaxInt64 {
		return 0, false
	}
	return time.Duration(v), true
}

func (a *Aggregator) MaxLatency() time.Duration { return time.Duration(a.maxLatency.Load()) }

func (a *Aggregator) StatusCount(class StatusClass) int64 {
	if class < 0 || class >= numStatusClasses {
		return 0
	}
	return a.statuses[class].Load()
}

func (a *Aggregator) BytesRead() int64 { return a.bytesRead.Load() }

func (a *Aggregator) BytesWritten() int64 { return a.bytesWritten.Load() }

// PrintProgressStats writes one line with the counters as they are right now.
func (a *Aggregator) PrintProgressStats(w io.Writer, expected int64) {
	done := a.Attempts()
	pct := 0.0
	if expected > 0 {
		pct = float64(done) / float64(expected) * 100
	}
	fmt.Fprintf(w, "Progress: %d/%d (%.1f%%) 2xx:%d 4xx:%d 5xx:%d errors:%d\n",
		done, expected, pct,
		a.StatusCount(Status2xx), a.StatusCount(Status4xx), a.StatusCount(Status5xx), a.Errors())
}

func reduceMin(v *atomic.Int64, sample int64) {
	for {
		old := v.Load()
		if sample >= old {
			return
		}
		if v.CompareAndSwap(old, sample) {
			return
		}
	}
}

func reduceMax(v *atomic.Int64, sample int64) {
	for {
		old := v.Load()
		if sample <= old {
			return
		}
		if v.CompareAndSwap(old, sample) {
			return
		}
	}
}
