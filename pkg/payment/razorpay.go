package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/constants"
	"github.com/razorpay/razorpay-go/utils"
)

const razorpayPaymentLinkPaid = "payment_link.paid"

type RazorpayProvider struct {
	client        *razorpay.Client
	webhookSecret string
}

func NewRazorpayProvider(keyID, keySecret, webhookSecret string) *RazorpayProvider {
	client := razorpay.NewClient(keyID, keySecret)

	return &RazorpayProvider{
		client:        client,
		webhookSecret: webhookSecret,
	}
}

func (r *RazorpayProvider) Name() string { return "razorpay" }

func (r *RazorpayProvider) SignatureHeader() string { return "X-Razorpay-Signature" }

// CreateCheckoutSession creates a hosted payment link. Booking metadata
// travels in the link's notes and comes back on payment_link.paid.
func (r *RazorpayProvider) CreateCheckoutSession(ctx context.Context, request *CheckoutRequest) (*CheckoutSession, error) {
	notes := make(map[string]interface{}, len(request.Metadata))
	for key, value := range request.Metadata {
		notes[key] = value
	}

	data := map[string]interface{}{
		"amount":          toMinorUnits(request.Amount),
		"currency":        strings.ToUpper(request.Currency),
		"description":     request.ProductName,
		"notes":           notes,
		"callback_url":    request.SuccessURL,
		"callback_method": "get",
	}

	link, err := r.client.PaymentLink.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	id, _ := link["id"].(string)
	shortURL, _ := link["short_url"].(string)
	if id == "" || shortURL == "" {
		return nil, fmt.Errorf("failed to create payment link: incomplete response")
	}

	return &CheckoutSession{
		SessionID: id,
		URL:       shortURL,
	}, nil
}

type razorpayWebhook struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		PaymentLink struct {
			Entity struct {
				ID     string            `json:"id"`
				Amount int64             `json:"amount"`
				Notes  map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment_link"`
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (r *RazorpayProvider) ValidateWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	if signature == "" || !utils.VerifyWebhookSignature(string(payload), signature, r.webhookSecret) {
		return nil, ErrInvalidSignature
	}

	var body razorpayWebhook
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("failed to unmarshal webhook payload: %w", err)
	}

	paymentID := body.Payload.Payment.Entity.ID
	event := &WebhookEvent{
		// Razorpay puts the event id in a header only; event+payment is unique per delivery target.
		EventID:   body.Event + ":" + paymentID,
		EventType: body.Event,
		CreatedAt: body.CreatedAt,
	}

	if body.Event == razorpayPaymentLinkPaid {
		event.CheckoutCompleted = true
		event.PaymentReference = paymentID
		event.Metadata = body.Payload.PaymentLink.Entity.Notes
		event.Amount = float64(body.Payload.Payment.Entity.Amount) / 100
	}

	return event, nil
}

func (r *RazorpayProvider) RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	data := map[string]interface{}{
		"notes": map[string]interface{}{
			"reason": request.Reason,
		},
	}

	var (
		refund map[string]interface{}
		err    error
	)
	if amount := int(toMinorUnits(request.Amount)); amount > 0 {
		refund, err = r.client.Payment.Refund(request.PaymentReference, amount, data, nil)
	} else {
		// Payment.Refund always sends "amount"; Razorpay rejects 0 and only
		// refunds in full when the field is absent.
		path := fmt.Sprintf("/%s%s/%s/refund", constants.VERSION_V1, constants.PAYMENT_URL, url.PathEscape(request.PaymentReference))
		refund, err = r.client.Request.Post(path, data, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	resp := &RefundResponse{}
	resp.RefundID, _ = refund["id"].(string)
	resp.Status, _ = refund["status"].(string)
	if v, ok := refund["amount"].(float64); ok {
		resp.Amount = v / 100
	}

	return resp, nil
}
