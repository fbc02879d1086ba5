// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request latency by method and status
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "box_scheduler_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	// SchedulingConflicts counts rejected writes by resource kind
	SchedulingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "box_scheduler_conflicts_total",
		Help: "Scheduling mutations rejected because of interval conflicts",
	}, []string{"resource"})

	// BookingsCreated counts successfully created records by resource kind
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "box_scheduler_bookings_created_total",
		Help: "Assignments and appointments created",
	}, []string{"resource"})

	// PermissionDenials counts mutations rejected by the permission gate
	PermissionDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "box_scheduler_permission_denials_total",
		Help: "Mutations rejected by the permission resolver",
	})
)

// Middleware records request duration per method and status
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		RequestDuration.
			WithLabelValues(r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
