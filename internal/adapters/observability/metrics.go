package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "funmarket"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	ExternalErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_errors_total", Help: "Outbound requests that got no response."},
		[]string{"service", "endpoint", "error"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "search_requests_total", Help: "Listing searches by kind and sort."},
		[]string{"kind", "sort"},
	)
	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "search_results",
			Help:    "Listings matching a search before pagination.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"kind"},
	)
	DroppedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "normalize_dropped_total", Help: "Source records dropped for missing identity."},
		[]string{"kind"},
	)
	UpstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "upstream_failures_total", Help: "Snapshot fetches that failed open."},
		[]string{"kind"},
	)
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: namespace, Name: "breaker_state", Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)."},
		[]string{"name"},
	)
)

// Serve exposes reg on a dedicated listener.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

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
	reg.MustRegister(
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, ExternalErrors, CacheEvents,
		SearchRequests, SearchResults, DroppedRecords, UpstreamFailures, BreakerState,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

// ObserveExternalError counts a transport failure, labelled by error type.
func ObserveExternalError(service, endpoint string, err error) {
	ExternalErrors.WithLabelValues(service, endpoint, LabelErr(err)).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveSearch(kind, sort string, matched int) {
	SearchRequests.WithLabelValues(kind, sort).Inc()
	SearchResults.WithLabelValues(kind).Observe(float64(matched))
}

func ObserveDropped(kind string) { DroppedRecords.WithLabelValues(kind).Inc() }

func ObserveUpstreamFailure(kind string) { UpstreamFailures.WithLabelValues(kind).Inc() }

func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
