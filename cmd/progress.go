package cmd

import (
	"io"
	"sync"
	"time"

	"github.com/BatikanHyt/postbench/pkg/collector"
)

// watchProgress prints the counters every interval until the returned func is
// called. A non positive interval prints nothing.
func watchProgress(interval time.Duration, stats *collector.Aggregator, expected int64, w io.Writer) func() {
	if interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				stats.PrintProgressStats(w, expected)
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}
