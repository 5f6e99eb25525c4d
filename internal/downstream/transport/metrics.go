package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики и гистограмма исходящих вызовов.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в reg (nil — prometheus.DefaultRegisterer).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := promauto.With(reg)

	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bff_downstream_requests_total",
			Help: "Downstream HTTP calls by method and status (\"error\" for transport failures).",
		}, []string{"method", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bff_downstream_request_duration_seconds",
			Help:    "Downstream HTTP call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// WithMetrics считает вызовы и латентность. m == nil — no-op.
func WithMetrics(m *Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			m.duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			m.requests.WithLabelValues(r.Method, status).Inc()

			return resp, err
		})
	}
}
