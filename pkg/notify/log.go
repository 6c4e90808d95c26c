package notify

import (
	"context"

	"rentride/pkg/logger"
)

// LogPublisher writes booking events to the application log.
type LogPublisher struct {
	logger *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event *BookingEvent) error {
	p.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"event":             event.Type,
		"vehicle_id":        event.VehicleID,
		"booking_id":        event.BookingID,
		"user_id":           event.UserID,
		"payment_reference": event.PaymentReference,
		"type":              "booking_notification",
	}).Info("Booking notification")
	return nil
}
