package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "mongodb", cfg.App.StoreDriver)
	assert.Equal(t, time.Hour, cfg.Security.JWTAccessTokenTTL)
	assert.Equal(t, "stripe", cfg.Payment.DefaultProvider)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PAYMENT_DEFAULT_PROVIDER", "razorpay")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "rzp_whsec")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "memory", cfg.App.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.Security.JWTAccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, "rzp_whsec", cfg.Payment.WebhookSecret())
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      &AppConfig{Environment: "production", StoreDriver: "mongodb"},
			Security: &SecurityConfig{JWTSecret: "real-secret"},
			Payment: &PaymentConfig{
				DefaultProvider: "stripe",
				Stripe:          &StripeConfig{WebhookSecret: "whsec_x"},
				Razorpay:        &RazorpayConfig{},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid production config", mutate: func(c *Config) {}},
		{name: "unknown store driver", mutate: func(c *Config) { c.App.StoreDriver = "postgres" }, wantErr: true},
		{name: "unknown payment provider", mutate: func(c *Config) { c.Payment.DefaultProvider = "paypal" }, wantErr: true},
		{name: "default jwt secret in production", mutate: func(c *Config) { c.Security.JWTSecret = defaultJWTSecret }, wantErr: true},
		{name: "missing webhook secret in production", mutate: func(c *Config) { c.Payment.Stripe.WebhookSecret = "" }, wantErr: true},
		{
			name: "default secrets allowed outside production",
			mutate: func(c *Config) {
				c.App.Environment = "development"
				c.Security.JWTSecret = defaultJWTSecret
				c.Payment.Stripe.WebhookSecret = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
