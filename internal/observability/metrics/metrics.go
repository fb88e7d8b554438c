package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyswap_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studyswap_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	pointsTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyswap_points_transactions_total",
		Help: "Points ledger transactions by type",
	}, []string{"type"})

	listingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyswap_listings_created_total",
		Help: "Listings created",
	})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyswap_registrations_total",
		Help: "Accounts created by sign-up method",
	}, []string{"method"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObservePointsTransaction counts a committed ledger entry
func ObservePointsTransaction(txType string) {
	pointsTransactions.WithLabelValues(txType).Inc()
}

// ObserveListingCreated counts a committed listing
func ObserveListingCreated() {
	listingsCreated.Inc()
}

// ObserveRegistration counts a new account; method is "password" or "federated"
func ObserveRegistration(method string) {
	registrations.WithLabelValues(method).Inc()
}

// GinMiddleware records every request against its route template
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
