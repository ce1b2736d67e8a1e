package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the marketplace backend.
type Config struct {
	Port string
	Env  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string

	KafkaBrokers           []string
	KafkaOrderTopic        string
	KafkaNotificationTopic string

	JWTSecret string

	// Platform pricing
	CommissionRate      float64
	StandardShippingFee float64
	ExpressShippingFee  float64
	Currency            string
	CountryCode         string

	// Courier gateway
	CourierBaseURL      string
	CourierClientID     string
	CourierClientSecret string

	// Payment gateway
	PaymentBaseURL     string
	PaymentAPIKey      string
	PaymentCallbackURL string
	PaymentErrorURL    string
}

// Load reads configuration from environment variables with a .env fallback.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Riyadh"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		KafkaBrokers:           strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaOrderTopic:        getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		KafkaNotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "notification-events"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		CommissionRate:      getEnvFloat("COMMISSION_RATE", 0.1),
		StandardShippingFee: getEnvFloat("STANDARD_SHIPPING_FEE", 0),
		ExpressShippingFee:  getEnvFloat("EXPRESS_SHIPPING_FEE", 35),
		Currency:            getEnv("CURRENCY", "SAR"),
		CountryCode:         getEnv("COUNTRY_CODE", "SA"),

		CourierBaseURL:      os.Getenv("COURIER_BASE_URL"),
		CourierClientID:     os.Getenv("COURIER_CLIENT_ID"),
		CourierClientSecret: os.Getenv("COURIER_CLIENT_SECRET"),

		PaymentBaseURL:     os.Getenv("PAYMENT_BASE_URL"),
		PaymentAPIKey:      os.Getenv("PAYMENT_API_KEY"),
		PaymentCallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),
		PaymentErrorURL:    os.Getenv("PAYMENT_ERROR_URL"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
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
