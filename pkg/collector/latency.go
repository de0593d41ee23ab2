package collector

import (
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
)

const (
	histogramMin     = 1                                           // microseconds
	histogramMax     = int64(10 * time.Minute / time.Microsecond) // microseconds
	histogramSigFigs = 2
)

// LatencyHistogram keeps a latency distribution. It is not safe for
// concurrent use; ShardedHistogram guards the ones workers record into.
type LatencyHistogram struct {
	h *hdrhistogram.Histogram
}

func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{h: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)}
}

// Record clamps samples outside the trackable range.
func (l *LatencyHistogram) Record(d time.Duration) {
	us := int64(d / time.Microsecond)
	if us < histogramMin {
		us = histogramMin
	}
	if us > histogramMax {
		us = histogramMax
	}
	// cannot fail, the value is in range
	_ = l.h.RecordValue(us)
}

func (l *LatencyHistogram) Merge(other *LatencyHistogram) {
	if other == nil {
		return
	}
	l.h.Merge(other.h)
}

func (l *LatencyHistogram) Count() int64 {
	return l.h.TotalCount()
}

// Quantile takes q in percent (0-100).
func (l *LatencyHistogram) Quantile(q float64) time.Duration {
	return time.Duration(l.h.ValueAtQuantile(q)) * time.Microsecond
}

// MergeHistograms folds the per worker histograms into a new one.
func MergeHistograms(hists []*LatencyHistogram) *LatencyHistogram {
	merged := NewLatencyHistogram()
	for _, h := range hists {
		merged.Merge(h)
	}
	return merged
}

// ShardedHistogram bounds the number of histograms a run keeps no matter how
// many workers it has. Workers pick a shard by id; each shard has its own lock.
type ShardedHistogram struct {
	shards []histogramShard
}

type histogramShard struct {
	mu sync.Mutex
	h  *LatencyHistogram
}

// NewShardedHistogram allocates n shards, at least one.
func NewShardedHistogram(n int) *ShardedHistogram {
	if n < 1 {
		n = 1
	}
	s := &ShardedHistogram{shards: make([]histogramShard, n)}
	for i := range s.shards {
		s.shards[i].h = NewLatencyHistogram()
	}
	return s
}

func (s *ShardedHistogram) Shards() int {
	return len(s.shards)
}

// Record is safe for concurrent use.
func (s *ShardedHistogram) Record(worker int, d time.Duration) {
	shard := &s.shards[worker%len(s.shards)]
	shard.mu.Lock()
	shard.h.Record(d)
	shard.mu.Unlock()
}

// Merged folds every shard into a new histogram. Call it once the workers
// joined.
func (s *ShardedHistogram) Merged() *LatencyHistogram {
	hists := make([]*LatencyHistogram, len(s.shards))
	for i := range s.shards {
		hists[i] = s.shards[i].h
	}
	return MergeHistograms(hists)
}
