package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(bookingEvents.WithLabelValues(BookingCreated))
	IncBooking(BookingCreated)
	assert.Equal(t, before+1, testutil.ToFloat64(bookingEvents.WithLabelValues(BookingCreated)))

	assert.NotPanics(t, func() {
		IncHTTP("/api/bookings", "201")
		IncConflict("create")
		IncWebhook("stripe", WebhookBooked)
		IncRefund("stripe")
	})
}
