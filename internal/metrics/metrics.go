package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "likebot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "likebot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "likebot_verifications_total",
			Help: "Verification code redemptions by result.",
		},
		[]string{"result"},
	)

	FulfillmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "likebot_fulfillments_total",
			Help: "Fulfillment loop terminal outcomes per entry.",
		},
		[]string{"outcome"},
	)

	FulfillmentCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "likebot_fulfillment_cycle_duration_seconds",
			Help:    "Duration of one fulfillment loop cycle.",
			Buckets: prometheus.DefBuckets,
		},
	)

	LikeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "likebot_like_requests_total",
			Help: "Like API calls by normalized outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		VerificationsTotal,
		FulfillmentsTotal,
		FulfillmentCycleDuration,
		LikeRequestsTotal,
	)
}
