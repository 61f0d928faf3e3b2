package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milan_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "milan_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milan_payment_verifications_total",
		Help: "Payment verification outcomes; result is created, updated, duplicate or an error code.",
	}, []string{"result"})

	OTPVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milan_otp_verifications_total",
		Help: "OTP verification outcomes.",
	}, []string{"result"})

	Webhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milan_webhooks_total",
		Help: "Konfhub webhooks received by derived payment status.",
	}, []string{"status"})

	ConsumedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milan_consumed_events_total",
		Help: "NATS events processed by the consumers service.",
	}, []string{"subject", "result"})

	Bookings = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "milan_bookings",
		Help: "Stored ticket confirmations by payment status.",
	}, []string{"status"})
)

// NewServer returns an HTTP server exposing the default registry on /metrics.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
