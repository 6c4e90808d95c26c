package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/metrics"
	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
	"rentride/pkg/logger"
	"rentride/pkg/notify"
	"rentride/pkg/payment"
)

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, request *CheckoutRequest) (*payment.CheckoutSession, error)
	// HandleWebhook verifies and processes one provider notification. The
	// raw body must be passed exactly as received.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
	SignatureHeader() string
}

type CheckoutRequest struct {
	VehicleID primitive.ObjectID
	UserID    primitive.ObjectID
	StartDate time.Time
	EndDate   time.Time
}

// WebhookResult is what the webhook endpoint acknowledges back to the
// provider. Booked is false when the event was ignored, a duplicate, or
// refunded because the dates were taken in the meantime.
type WebhookResult struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Booked    bool            `json:"booked"`
	Duplicate bool            `json:"duplicate,omitempty"`
	Refunded  bool            `json:"refunded,omitempty"`
	Booking   *models.Booking `json:"booking,omitempty"`
}

type PaymentConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	// WebhookTTL is how long a processed event id is remembered.
	WebhookTTL time.Duration
}

type paymentService struct {
	provider       payment.CheckoutProvider
	vehicleRepo    interfaces.VehicleRepository
	bookingService BookingService
	cache          CacheService
	publisher      notify.Publisher
	config         PaymentConfig
	logger         *logger.Logger
}

func NewPaymentService(
	provider payment.CheckoutProvider,
	vehicleRepo interfaces.VehicleRepository,
	bookingService BookingService,
	cache CacheService,
	publisher notify.Publisher,
	config PaymentConfig,
	log *logger.Logger,
) PaymentService {
	if config.WebhookTTL <= 0 {
		config.WebhookTTL = 72 * time.Hour
	}
	return &paymentService{
		provider:       provider,
		vehicleRepo:    vehicleRepo,
		bookingService: bookingService,
		cache:          cache,
		publisher:      publisher,
		config:         config,
		logger:         log,
	}
}

func (s *paymentService) SignatureHeader() string {
	return s.provider.SignatureHeader()
}

func (s *paymentService) CreateCheckoutSession(ctx context.Context, request *CheckoutRequest) (*payment.CheckoutSession, error) {
	if err := utils.ValidateBookingRange(request.StartDate, request.EndDate); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.HasConflict(request.StartDate, request.EndDate, primitive.NilObjectID) {
		metrics.IncConflict("checkout")
		return nil, utils.ErrDateConflict
	}

	amount := utils.DayCount(request.StartDate, request.EndDate) * vehicle.PricePerDay
	session, err := s.provider.CreateCheckoutSession(ctx, &payment.CheckoutRequest{
		ProductName: vehicle.DisplayName(),
		Description: fmt.Sprintf("%s to %s", request.StartDate.Format(utils.DateLayout), request.EndDate.Format(utils.DateLayout)),
		Amount:      amount,
		Currency:    s.config.Currency,
		SuccessURL:  s.config.SuccessURL,
		CancelURL:   s.config.CancelURL,
		Metadata: map[string]string{
			payment.MetadataVehicleID: request.VehicleID.Hex(),
			payment.MetadataUserID:    request.UserID.Hex(),
			payment.MetadataStartDate: utils.FormatTimeISO(request.StartDate),
			payment.MetadataEndDate:   utils.FormatTimeISO(request.EndDate),
		},
	})
	if err != nil {
		s.logger.WithError(err).WithVehicleID(request.VehicleID).Error("Checkout session creation failed")
		return nil, fmt.Errorf("%w: %v", utils.ErrExternalService, err)
	}

	s.logger.LogPaymentEvent(session.SessionID, "checkout_session_created", amount, s.config.Currency)
	return session, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	providerName := s.provider.Name()

	event, err := s.provider.ValidateWebhook(ctx, payload, signature)
	if err != nil {
		metrics.IncWebhook(providerName, metrics.WebhookRejected)
		if errors.Is(err, payment.ErrInvalidSignature) {
			s.logger.LogSecurityEvent("webhook_signature_invalid", "medium", map[string]interface{}{
				"provider": providerName,
			})
			return nil, fmt.Errorf("%w: %v", utils.ErrSignatureVerification, err)
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidInput, err)
	}

	result := &WebhookResult{EventID: event.EventID, EventType: event.EventType}
	if !event.CheckoutCompleted {
		metrics.IncWebhook(providerName, metrics.WebhookIgnored)
		return result, nil
	}

	first, err := s.claimEvent(ctx, event.EventID)
	if err != nil {
		return nil, err
	}
	if !first {
		metrics.IncWebhook(providerName, metrics.WebhookDuplicate)
		result.Duplicate = true
		return result, nil
	}

	request, err := confirmRequestFromMetadata(event)
	if err != nil {
		return nil, s.fail(ctx, event.EventID, err)
	}

	// A refund is final for this payment; redeliveries must not refund again.
	vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
	if err != nil {
		return nil, s.fail(ctx, event.EventID, err)
	}
	if vehicle.IsRefunded(request.PaymentReference) {
		metrics.IncWebhook(providerName, metrics.WebhookDuplicate)
		result.Duplicate = true
		result.Refunded = true
		return result, nil
	}

	booking, err := s.bookingService.ConfirmPayment(ctx, request)
	switch {
	case err == nil:
		metrics.IncWebhook(providerName, metrics.WebhookBooked)
		s.logger.LogPaymentEvent(event.PaymentReference, "payment_confirmed", booking.TotalPrice, s.config.Currency)
		result.Booked = true
		result.Booking = booking
		return result, nil

	case errors.Is(err, utils.ErrDateConflict):
		// The slot was taken after checkout opened; the customer gets their
		// money back and the provider gets a 200 so it stops retrying.
		if refundErr := s.refund(ctx, event, request); refundErr != nil {
			s.releaseEvent(ctx, event.EventID)
			return nil, refundErr
		}
		metrics.IncWebhook(providerName, metrics.WebhookRefunded)
		result.Refunded = true
		return result, nil

	default:
		return nil, s.fail(ctx, event.EventID, err)
	}
}

func (s *paymentService) fail(ctx context.Context, eventID string, err error) error {
	s.releaseEvent(ctx, eventID)
	metrics.IncWebhook(s.provider.Name(), metrics.WebhookFailed)
	return err
}

func confirmRequestFromMetadata(event *payment.WebhookEvent) (*ConfirmPaymentRequest, error) {
	md := event.Metadata
	if md == nil {
		return nil, fmt.Errorf("%w: webhook metadata missing", utils.ErrInvalidInput)
	}

	vehicleID, err := primitive.ObjectIDFromHex(md[payment.MetadataVehicleID])
	if err != nil {
		return nil, fmt.Errorf("%w: metadata vehicle_id", utils.ErrInvalidInput)
	}
	userID, err := primitive.ObjectIDFromHex(md[payment.MetadataUserID])
	if err != nil {
		return nil, fmt.Errorf("%w: metadata user_id", utils.ErrInvalidInput)
	}
	start, err := utils.ParseDate(md[payment.MetadataStartDate])
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseDate(md[payment.MetadataEndDate])
	if err != nil {
		return nil, err
	}

	return &ConfirmPaymentRequest{
		VehicleID:        vehicleID,
		UserID:           userID,
		StartDate:        start,
		EndDate:          end,
		PaymentReference: event.PaymentReference,
	}, nil
}

func (s *paymentService) refund(ctx context.Context, event *payment.WebhookEvent, request *ConfirmPaymentRequest) error {
	resp, err := s.provider.RefundPayment(ctx, &payment.RefundRequest{
		PaymentReference: request.PaymentReference,
		Amount:           event.Amount,
		Reason:           "dates no longer available",
	})
	if err != nil {
		s.logger.WithError(err).WithField("payment_reference", request.PaymentReference).Error("Refund failed")
		return fmt.Errorf("%w: refund: %v", utils.ErrExternalService, err)
	}

	metrics.IncRefund(s.provider.Name())
	s.logger.LogPaymentEvent(request.PaymentReference, "payment_refunded", resp.Amount, s.config.Currency)

	// The money is already back with the customer, so a failure here is only
	// logged. Failing the webhook would make the provider redeliver into a
	// second refund attempt.
	if err := s.vehicleRepo.RecordRefund(ctx, request.VehicleID, request.PaymentReference); err != nil {
		s.logger.WithError(err).WithField("payment_reference", request.PaymentReference).Error("Failed to record refund")
	}

	if s.publisher != nil {
		pubErr := s.publisher.Publish(ctx, &notify.BookingEvent{
			Type:             notify.EventBookingRefunded,
			VehicleID:        request.VehicleID.Hex(),
			UserID:           request.UserID.Hex(),
			TotalPrice:       resp.Amount,
			PaymentReference: request.PaymentReference,
			OccurredAt:       time.Now().UTC(),
		})
		if pubErr != nil {
			s.logger.WithError(pubErr).Warn("Failed to publish refund event")
		}
	}
	return nil
}

// claimEvent records the event id in Redis. Without a cache every delivery
// is processed; ConfirmPayment's reference check and the recorded refunds
// do the dedup alone.
func (s *paymentService) claimEvent(ctx context.Context, eventID string) (bool, error) {
	if s.cache == nil || strings.TrimSpace(eventID) == "" {
		return true, nil
	}

	ok, err := s.cache.SetNX(ctx, utils.CacheWebhookEventPrefix+eventID, time.Now().Unix(), s.config.WebhookTTL)
	if err != nil {
		s.logger.WithError(err).Warn("Webhook dedup unavailable, processing event")
		return true, nil
	}
	return ok, nil
}

func (s *paymentService) releaseEvent(ctx context.Context, eventID string) {
	if s.cache == nil || eventID == "" {
		return
	}
	if err := s.cache.Delete(ctx, utils.CacheWebhookEventPrefix+eventID); err != nil {
		s.logger.WithError(err).Warn("Failed to release webhook event")
	}
}
