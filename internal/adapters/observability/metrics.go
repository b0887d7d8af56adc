package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "refiner", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "refiner", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InferenceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "refiner", Name: "inference_requests_total", Help: "Outbound inference requests."},
		[]string{"task", "model", "status"},
	)
	InferenceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "refiner", Name: "inference_request_duration_seconds",
			Help:    "Outbound inference request duration seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"task", "model"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "refiner", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	ModelLoads = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "refiner", Name: "model_load_duration_seconds",
			Help:    "Capability handle construction duration seconds.",
			Buckets: []float64{.05, .5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"capability"},
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, InferenceRequests, InferenceLatency, CacheEvents, ModelLoads)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveInference(task, model string, status int, dur time.Duration) {
	InferenceRequests.WithLabelValues(task, model, strconv.Itoa(status)).Inc()
	InferenceLatency.WithLabelValues(task, model).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveModelLoad(capability string, dur time.Duration) {
	ModelLoads.WithLabelValues(capability).Observe(dur.Seconds())
}
