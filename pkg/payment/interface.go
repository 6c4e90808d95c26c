package payment

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned by ValidateWebhook when the payload was
// not signed with the configured webhook secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Metadata keys attached to every checkout session and read back from the
// completion webhook.
const (
	MetadataVehicleID = "vehicle_id"
	MetadataUserID    = "user_id"
	MetadataStartDate = "start_date"
	MetadataEndDate   = "end_date"
)

// CheckoutProvider is a hosted-checkout payment processor.
type CheckoutProvider interface {
	Name() string
	// SignatureHeader is the HTTP header carrying the webhook signature.
	SignatureHeader() string
	CreateCheckoutSession(ctx context.Context, request *CheckoutRequest) (*CheckoutSession, error)
	ValidateWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
	RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error)
}

type CheckoutRequest struct {
	ProductName string            `json:"product_name"`
	Description string            `json:"description"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type RefundRequest struct {
	PaymentReference string  `json:"payment_reference"`
	Amount           float64 `json:"amount"` // zero refunds the full amount
	Reason           string  `json:"reason"`
}

type RefundResponse struct {
	RefundID string  `json:"refund_id"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
}

type WebhookEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	// CheckoutCompleted is true for the provider's "payment collected" event.
	CheckoutCompleted bool              `json:"checkout_completed"`
	PaymentReference  string            `json:"payment_reference"`
	Metadata          map[string]string `json:"metadata"`
	Amount            float64           `json:"amount"`
	CreatedAt         int64             `json:"created_at"`
}

// toMinorUnits converts a decimal amount to cents/paise.
func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
