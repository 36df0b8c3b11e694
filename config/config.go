package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string
	BaseURL    string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Payment gateway. Empty key/secret means no gateway is configured;
	// whether that falls back to test payments or fails closed is decided
	// by PaymentStrictMode.
	RazorpayKey       string
	RazorpaySecret    string
	PaymentReturnURL  string
	PaymentMaxAmount  float64
	PaymentStrictMode bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine in deployed environments; variables come
	// from the process environment there.
	_ = godotenv.Load()

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:8080"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@localhost"),

		RazorpayKey:       os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret:    os.Getenv("RAZORPAY_SECRET"),
		PaymentReturnURL:  getEnv("PAYMENT_RETURN_URL", "https://fluencyclub.fun/payment-success/"),
		PaymentMaxAmount:  getEnvFloat("PAYMENT_MAX_AMOUNT", 100000),
		PaymentStrictMode: getEnvBool("PAYMENT_STRICT_MODE", false),
	}

	if config.Port == "" {
		config.Port = "8080"
	}

	return config, nil
}

// GatewayConfigured reports whether real payment gateway credentials are present.
func (c *Config) GatewayConfigured() bool {
	return c.RazorpayKey != "" && c.RazorpaySecret != ""
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && !c.PaymentStrictMode {
		return fmt.Errorf("PAYMENT_STRICT_MODE must be enabled in production")
	}
	if c.IsProduction() && !c.GatewayConfigured() {
		return fmt.Errorf("payment gateway credentials are required in production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
