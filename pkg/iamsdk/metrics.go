package iamsdk

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics instruments outgoing requests and the verification cache. All
// methods are nil-safe so an uninstrumented client pays only a nil check.
type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iam_client_requests_total",
				Help: "Total IAM API requests by operation and HTTP status.",
			},
			[]string{"op", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iam_client_request_duration_seconds",
				Help:    "IAM API request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iam_client_verify_cache_hits_total",
			Help: "Token verifications served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iam_client_verify_cache_misses_total",
			Help: "Token verifications that required a live request.",
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.cacheHits, m.cacheMisses)
	return m
}

// observeRequest records one round trip. A status of 0 means the request
// never produced a response (transport failure).
func (m *metrics) observeRequest(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *metrics) observeCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *metrics) observeCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}
