package notify

import (
	"context"
	"time"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
	EventBookingPaid      = "booking.paid"
	EventBookingRefunded  = "booking.refunded"
	EventBookingReviewed  = "booking.reviewed"
)

// BookingEvent is the snapshot published after a booking mutation.
type BookingEvent struct {
	Type             string    `json:"type"`
	VehicleID        string    `json:"vehicle_id"`
	BookingID        string    `json:"booking_id,omitempty"`
	UserID           string    `json:"user_id,omitempty"`
	StartDate        time.Time `json:"start_date,omitempty"`
	EndDate          time.Time `json:"end_date,omitempty"`
	TotalPrice       float64   `json:"total_price,omitempty"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher delivers booking events to downstream consumers. Delivery is
// best effort; callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event *BookingEvent) error
}
