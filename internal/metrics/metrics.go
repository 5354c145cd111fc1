package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftlist_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "giftlist_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	notificationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftlist_notifications_created_total",
			Help: "Notifications persisted, by type.",
		},
		[]string{"type"},
	)
	notificationsRenderedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftlist_notifications_rendered_total",
			Help: "Notifications rendered, by type and outcome (ok or fallback).",
		},
		[]string{"type", "outcome"},
	)
	ownershipFlagsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftlist_ownership_flag_operations_total",
			Help: "Claim operations, by action and result.",
		},
		[]string{"action", "result"},
	)
	wishlistAccessDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giftlist_wishlist_access_denied_total",
			Help: "Wishlist reads rejected by the privacy gate.",
		},
	)
	reminderRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftlist_birthday_reminder_runs_total",
			Help: "Birthday reminder scheduler runs, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		notificationsCreatedTotal,
		notificationsRenderedTotal,
		ownershipFlagsTotal,
		wishlistAccessDeniedTotal,
		reminderRunsTotal,
	)
}

// Handler serves the Prometheus exposition endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware records request counts and latencies by chi route pattern
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func IncNotificationCreated(notificationType string) {
	notificationsCreatedTotal.WithLabelValues(notificationType).Inc()
}

func IncNotificationRendered(notificationType string, fallback bool) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	notificationsRenderedTotal.WithLabelValues(notificationType, outcome).Inc()
}

func IncOwnershipFlag(action, result string) {
	ownershipFlagsTotal.WithLabelValues(action, result).Inc()
}

func IncWishlistAccessDenied() {
	wishlistAccessDeniedTotal.Inc()
}

func IncReminderRun(result string) {
	reminderRunsTotal.WithLabelValues(result).Inc()
}
