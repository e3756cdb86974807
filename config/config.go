package config

import (
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// GatewayConfig holds the mobile-money provider endpoint and the two static
// merchant credentials it expects on every call. Loaded once at startup and
// handed to the gateway client; nothing else reads these.
type GatewayConfig struct {
	BaseURL        string
	MerchantID     string
	MerchantSecret string
}

// CheckoutConfig drives the payment confirmation state machine. PollInterval
// is the cadence of transaction status checks, ConfirmTimeout the hard
// deadline for a confirmation to arrive, OverrideGrace how long before the
// "I confirmed it on my phone" action is offered, and FinalizeDelay the pause
// between a session completing and the order being persisted (the apps play a
// success animation in that window).
type CheckoutConfig struct {
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
	OverrideGrace  time.Duration
	FinalizeDelay  time.Duration
	SessionTTL     time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8088"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "lipa:lipa@tcp(localhost:3306)/lipa?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "lipa",
		},
		Gateway: GatewayConfig{
			BaseURL:        envOr("GATEWAY_BASE_URL", "https://api.moneta-pay.africa"),
			MerchantID:     os.Getenv("GATEWAY_MERCHANT_ID"),
			MerchantSecret: os.Getenv("GATEWAY_MERCHANT_SECRET"),
		},
		Checkout: CheckoutConfig{
			PollInterval:   4 * time.Second,
			ConfirmTimeout: 60 * time.Second,
			OverrideGrace:  15 * time.Second,
			FinalizeDelay:  2 * time.Second,
			SessionTTL:     15 * time.Minute,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
