// Package report prints a collector.Result. It formats only; every number is
// computed by the collector.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/BatikanHyt/postbench/pkg/collector"
	"github.com/BatikanHyt/postbench/pkg/helpers"
	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var Formats = []string{FormatText, FormatJSON}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func Write(w io.Writer, format string, res *collector.Result) error {
	if !helpers.Contains(Formats, format) {
		return fmt.Errorf("unknown output format %q, valid formats: %v", format, Formats)
	}
	if format == FormatJSON {
		return WriteJSON(w, res)
	}
	return WriteText(w, res)
}

func WriteJSON(w io.Writer, res *collector.Result) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

const (
	heavyRule = "==========================================================="
	lightRule = "-----------------------------------------------------------"
)

func WriteText(w io.Writer, res *collector.Result) error {
	var sb strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}

	line("")
	line("==================== Benchmark Results ====================")
	line("Run ID            : %s", res.RunID)
	line("Target URL        : %s", res.URL)
	line("Concurrency       : %d", res.Concurrency)
	line("Requests/Worker   : %d", res.RequestsPerWorker)
	line(lightRule)
	line("Requests")
	line("  Total           : %s", humanize.Comma(res.Total))
	line("  Success         : %s", humanize.Comma(res.Success))
	line("  Errors          : %s", humanize.Comma(res.Errors))
	for _, class := range []string{"1xx", "2xx", "3xx", "4xx", "5xx", "other"} {
		if n, ok := res.Statuses[class]; ok {
			line("    %-14s: %s", class, humanize.Comma(n))
		}
	}
	line(lightRule)
	line("Timing")
	line("  Elapsed         : %.3fs", res.ElapsedSeconds)
	line("  Throughput      : %.2f req/s", res.Throughput)
	line("  Transferred     : %s sent, %s received (%s/s)",
		humanize.Bytes(uint64(res.BytesWritten)), humanize.Bytes(uint64(res.BytesRead)),
		humanize.Bytes(uint64(res.TransferRate())))
	line(lightRule)
	line("Latency (milliseconds)")
	if res.HasLatency {
		line("  Average         : %8.3f", res.AvgLatencyMs)
		line("  Min             : %8.3f", res.MinLatencyMs)
		line("  Max             : %8.3f", res.MaxLatencyMs)
		line("  p50             : %8.3f", res.P50LatencyMs)
		line("  p90             : %8.3f", res.P90LatencyMs)
		line("  p99             : %8.3f", res.P99LatencyMs)
	} else {
		line("  n/a (no response received)")
	}
	line(heavyRule)
	line("")

	_, err := io.WriteString(w, sb.String())
	return err
}
