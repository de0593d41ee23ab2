package cmd

import (
	"errors"
	"log"
	"net/http"

	"github.com/BatikanHyt/postbench/pkg/collector"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newMetricsHandler(stats *collector.Aggregator) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector.NewPrometheusCollector(stats))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

func startMetricsServer(addr string, stats *collector.Aggregator, logger *log.Logger) *http.Server {
	srv := &http.Server{Addr: addr, Handler: newMetricsHandler(stats)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server: %v", err)
		}
	}()
	return srv
}
