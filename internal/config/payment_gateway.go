package config

type PaymentConfig struct {
	DefaultProvider string          `yaml:"default_provider"`
	Stripe          *StripeConfig   `yaml:"stripe"`
	Razorpay        *RazorpayConfig `yaml:"razorpay"`
	Currency        string          `yaml:"currency"`
	SuccessPath     string          `yaml:"success_path"`
	CancelPath      string          `yaml:"cancel_path"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type RazorpayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
	Webhook   string `yaml:"webhook_secret"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		DefaultProvider: getEnv("PAYMENT_DEFAULT_PROVIDER", "stripe"),
		Stripe: &StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Razorpay: &RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
			Webhook:   getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		},
		Currency:    getEnv("PAYMENT_CURRENCY", "usd"),
		SuccessPath: getEnv("PAYMENT_SUCCESS_PATH", "/payment-success"),
		CancelPath:  getEnv("PAYMENT_CANCEL_PATH", "/payment-cancelled"),
	}
}

// WebhookSecret returns the shared secret of the active provider.
func (p *PaymentConfig) WebhookSecret() string {
	switch p.DefaultProvider {
	case "razorpay":
		return p.Razorpay.Webhook
	default:
		return p.Stripe.WebhookSecret
	}
}
