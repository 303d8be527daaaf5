// Package metrics provides Prometheus instrumentation for the query
// pipeline. Collectors are registered on the default registry at init;
// if no metrics endpoint is exposed the registration is harmless and the
// hot-path observation calls are cheap counter increments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	queriesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irrd_queries_sent_total",
		Help: "Queries transmitted on the wire, by operation",
	}, []string{"op"})
	responses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irrd_responses_total",
		Help: "Response preambles read, by status code",
	}, []string{"status"})
	responseBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irrd_response_payload_bytes_total",
		Help: "Payload bytes consumed from response data",
	})
	items = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irrd_response_items_total",
		Help: "Response items successfully framed and parsed",
	})
	itemErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irrd_item_parse_errors_total",
		Help: "Response items that framed correctly but failed content parsing",
	})
	flushBatch = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irrd_flush_batch_size",
		Help:    "Distribution of queries flushed per send-queue batch",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
	})
)

func init() {
	prometheus.MustRegister(queriesSent, responses, responseBytes, items, itemErrors, flushBatch)
}

// ObserveQuerySent records one query written to the socket.
func ObserveQuerySent(op string) {
	queriesSent.WithLabelValues(op).Inc()
}

// ObserveResponse records one response preamble, labelled by its
// one-character status code.
func ObserveResponse(status string) {
	responses.WithLabelValues(status).Inc()
}

// ObserveItem records one successfully framed response item and the
// payload bytes it consumed.
func ObserveItem(bytes int) {
	items.Inc()
	responseBytes.Add(float64(bytes))
}

// ObserveItemError records a response item whose content failed to parse.
func ObserveItemError() {
	itemErrors.Inc()
}

// ObserveFlush records the size of one send-queue flush batch.
func ObserveFlush(size int) {
	if size <= 0 {
		return
	}
	flushBatch.Observe(float64(size))
}

// Serve exposes /metrics on addr in a background goroutine. Use when the
// process does not already export Prometheus metrics elsewhere.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}
