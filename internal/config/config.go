package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For timeouts and intervals

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // Database driver: mysql or postgres
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBSSLMode  string // Postgres sslmode
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	PayPalClientID     string // PayPal REST client id
	PayPalClientSecret string // PayPal REST secret
	PayPalMode         string // sandbox or live
	PayPalReturnURL    string // Where PayPal sends the payer after approval
	PayPalCancelURL    string // Where PayPal sends the payer after cancelling

	CoinPaymentsPublicKey  string // API public key
	CoinPaymentsPrivateKey string // API private key, signs API calls
	CoinPaymentsIPNSecret  string // Shared secret for IPN HMAC
	CoinPaymentsMerchantID string // Expected merchant id on IPNs
	CoinPaymentsIPNURL     string // Public URL of our IPN endpoint
	CoinPaymentsCurrency   string // Processor ticker for USDT on TRON

	ProcessorTimeout  time.Duration // Upper bound on every processor HTTP call
	ReconcileInterval time.Duration // How often pending withdrawals are re-checked

	AdminUsername string // Seeded into admin settings by cmd/migrate
	AdminPassword string // Seeded (bcrypt hashed) into admin settings by cmd/migrate
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),        // Application port
		DBDriver:   getEnv("DB_DRIVER", "mysql"),      // Database driver
		DBUser:     os.Getenv("DB_USER"),              // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),          // Database password
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),    // Database host
		DBPort:     os.Getenv("DB_PORT"),              // Database port
		DBName:     os.Getenv("DB_NAME"),              // Database name
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),   // Postgres sslmode
		JWTSecret:  os.Getenv("JWT_SECRET"),           // JWT secret key
		RedisAddr:  os.Getenv("REDIS_ADDR"),           // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),           // Redis password
		RedisDB:    redisDB,                           // Redis database number
		IsProd:     os.Getenv("IS_PROD") == "true",    // Is production environment

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalMode:         getEnv("PAYPAL_MODE", "sandbox"),
		PayPalReturnURL:    os.Getenv("PAYPAL_RETURN_URL"),
		PayPalCancelURL:    os.Getenv("PAYPAL_CANCEL_URL"),

		CoinPaymentsPublicKey:  os.Getenv("COINPAYMENTS_PUBLIC_KEY"),
		CoinPaymentsPrivateKey: os.Getenv("COINPAYMENTS_PRIVATE_KEY"),
		CoinPaymentsIPNSecret:  os.Getenv("COINPAYMENTS_IPN_SECRET"),
		CoinPaymentsMerchantID: os.Getenv("COINPAYMENTS_MERCHANT_ID"),
		CoinPaymentsIPNURL:     os.Getenv("COINPAYMENTS_IPN_URL"),
		CoinPaymentsCurrency:   getEnv("COINPAYMENTS_CURRENCY", "USDT.TRC20"),

		ProcessorTimeout:  time.Duration(getEnvInt("PROCESSOR_TIMEOUT_SECONDS", 30)) * time.Second,
		ReconcileInterval: time.Duration(getEnvInt("RECONCILE_INTERVAL_SECONDS", 300)) * time.Second,

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		port := c.DBPort
		if port == "" {
			port = "5432" // Postgres default port
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, port, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	}
	port := c.DBPort
	if port == "" {
		port = "3306" // MySQL default port
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
