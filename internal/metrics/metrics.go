// Package metrics регистрирует метрики Prometheus для потока записи и оплаты.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор счётчиков сервиса.
type Metrics struct {
	CheckoutSessions    *prometheus.CounterVec
	PaymentConfirmation *prometheus.CounterVec
	Enrollments         *prometheus.CounterVec
	VerificationCodes   *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CheckoutSessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courses",
			Name:      "checkout_sessions_total",
			Help:      "Hosted checkout sessions by outcome.",
		}, []string{"outcome"}),
		PaymentConfirmation: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courses",
			Name:      "payment_confirmations_total",
			Help:      "Payment confirmations by outcome.",
		}, []string{"outcome"}),
		Enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courses",
			Name:      "enrollments_total",
			Help:      "Ledger writes by outcome.",
		}, []string{"outcome"}),
		VerificationCodes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courses",
			Name:      "verification_codes_total",
			Help:      "Verification code operations by outcome.",
		}, []string{"outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "courses",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Middleware измеряет длительность запросов по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
