package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all environment configuration for the API and the sweeper.
type Config struct {
	Env  string
	Port string

	MongoURI string
	MongoDB  string
	RedisURL string

	JWTSecret string

	SiteURL string

	// SMTP
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	SenderName string

	// Payment provider selection: "iyzico" (default) or "stripe".
	// Missing credentials degrade the adapter to an explicit
	// not-configured state, never a crash.
	PaymentProvider string
	IyzicoAPIKey    string
	IyzicoSecretKey string
	IyzicoBaseURL   string
	StripeSecretKey string

	// Inventory alerts
	AdminAlertEmail string

	// Checkout
	ShippingFee           float64
	FreeShippingThreshold float64
	Currency              string
	IdempotencyTTL        time.Duration

	CartTTL time.Duration

	// Media uploads
	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string

	// Bootstrap admin (optional)
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables and validates the
// fields every deployment needs. Payment and SMTP credentials are allowed
// to be absent; the owning components degrade explicitly.
func Load() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "cmticaret"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SiteURL: getEnv("SITE_URL", "http://localhost:3000"),

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getEnv("SMTP_PORT", "587"),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		SenderName: getEnv("SMTP_SENDER_NAME", "CM Ticaret"),

		PaymentProvider: getEnv("PAYMENT_PROVIDER", "iyzico"),
		IyzicoAPIKey:    os.Getenv("IYZICO_API_KEY"),
		IyzicoSecretKey: os.Getenv("IYZICO_SECRET_KEY"),
		IyzicoBaseURL:   getEnv("IYZICO_BASE_URL", "https://sandbox-api.iyzipay.com"),
		StripeSecretKey: os.Getenv("STRIPE_API_KEY"),

		AdminAlertEmail: os.Getenv("ADMIN_ALERT_EMAIL"),

		ShippingFee:           getEnvFloat("SHIPPING_FEE", 25),
		FreeShippingThreshold: getEnvFloat("FREE_SHIPPING_THRESHOLD", 500),
		Currency:              getEnv("CURRENCY", "TRY"),
		IdempotencyTTL:        24 * time.Hour,

		CartTTL: 7 * 24 * time.Hour,

		S3Bucket:    getEnv("AWS_S3_BUCKET", "cmticaret-media"),
		S3Prefix:    getEnv("AWS_S3_PREFIX", "products/"),
		S3Region:    getEnv("AWS_REGION", "eu-central-1"),
		S3Endpoint:  os.Getenv("AWS_S3_ENDPOINT"),
		S3PublicURL: os.Getenv("AWS_S3_PUBLIC_URL"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
