package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config gathers every setting read from the environment.
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	AdminEmails    []string
	AllowedOrigins []string
	AppURL         string

	AWSRegion          string
	S3Bucket           string
	S3Region           string
	CloudFrontURL      string
	SESSender          string
	ContactRecipient   string
	SNSPlatformARN     string
	ModerationMinScore float32

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string

	ContactRateLimit  int
	ContactRateWindow time.Duration

	Plans PlanLimits
}

// Load reads .env when present, then the environment, then the plan file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Env:            GetEnv("ENV", "development"),
		Port:           GetEnv("PORT", "8080"),
		DatabaseURL:    databaseURL(),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      os.Getenv("JWT_ISSUER"),
		AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS")),
		AllowedOrigins: splitList(GetEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		AppURL:         GetEnv("APP_URL", "http://localhost:3000"),

		AWSRegion:          GetEnv("AWS_REGION", "eu-west-3"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Region:           os.Getenv("S3_REGION"),
		CloudFrontURL:      os.Getenv("CLOUDFRONT_URL"),
		SESSender:          os.Getenv("SES_EMAIL"),
		ContactRecipient:   os.Getenv("CONTACT_EMAIL"),
		SNSPlatformARN:     os.Getenv("SNS_FCM_ARN"),
		ModerationMinScore: float32(getFloat("MODERATION_MIN_CONFIDENCE", 80)),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceID:       os.Getenv("STRIPE_PRICE_ID"),

		ContactRateLimit:  getInt("CONTACT_RATE_LIMIT", 5),
		ContactRateWindow: getDuration("CONTACT_RATE_WINDOW", time.Hour),
	}
	if cfg.S3Region == "" {
		cfg.S3Region = cfg.AWSRegion
	}

	plans, err := LoadPlanLimits(os.Getenv("PLANS_FILE"))
	if err != nil {
		return nil, err
	}
	cfg.Plans = plans
	return cfg, nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// GetEnv returns the variable or fallback when unset.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		GetEnv("DB_HOST", "localhost"),
		GetEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		GetEnv("DB_NAME", "tidimondo"),
		GetEnv("DB_PORT", "5432"),
		GetEnv("DB_SSLMODE", "disable"),
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
