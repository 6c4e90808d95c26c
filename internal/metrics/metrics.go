package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rentride"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_events_total",
			Help:      "Successful booking mutations by kind.",
		},
		[]string{"event"},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected for overlapping dates, by operation.",
		},
		[]string{"operation"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_webhook_events_total",
			Help:      "Payment webhook deliveries by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	refunds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_refunds_total",
			Help:      "Refunds issued for payments that could not be booked.",
		},
		[]string{"provider"},
	)
)

// Event kinds for IncBooking.
const (
	BookingCreated   = "created"
	BookingUpdated   = "updated"
	BookingCancelled = "cancelled"
	BookingPaid      = "paid"
	BookingReviewed  = "reviewed"
)

// Webhook outcomes for IncWebhook.
const (
	WebhookBooked    = "booked"
	WebhookDuplicate = "duplicate"
	WebhookRefunded  = "refunded"
	WebhookIgnored   = "ignored"
	WebhookRejected  = "rejected"
	WebhookFailed    = "failed"
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingEvents, bookingConflicts, webhookEvents, refunds)
	})
}

func IncHTTP(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

func IncBooking(event string) {
	bookingEvents.WithLabelValues(event).Inc()
}

func IncConflict(operation string) {
	bookingConflicts.WithLabelValues(operation).Inc()
}

func IncWebhook(provider, outcome string) {
	webhookEvents.WithLabelValues(provider, outcome).Inc()
}

func IncRefund(provider string) {
	refunds.WithLabelValues(provider).Inc()
}
