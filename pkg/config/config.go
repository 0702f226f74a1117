package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort      int
	OrderHTTPPort int

	// Storefront session identity. Tokens are opaque here; orderd resolves
	// them to a user through its token table.
	UserID    string
	AuthToken string

	CartPath        string
	CatalogSeedPath string
	PincodePath     string
	OrderServiceURL string

	PaymentApproveRate float64
	PaymentDelayMS     int
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:      getEnvInt("HTTP_PORT", 8080),
		OrderHTTPPort: getEnvInt("ORDER_HTTP_PORT", 8082),

		UserID:    getEnv("STOREFRONT_USER_ID", ""),
		AuthToken: getEnv("STOREFRONT_AUTH_TOKEN", ""),

		CartPath:        getEnv("CART_PATH", "cart.json"),
		CatalogSeedPath: getEnv("CATALOG_SEED_PATH", "configs/catalog.yaml"),
		PincodePath:     getEnv("PINCODE_PATH", "configs/pincodes.yaml"),
		OrderServiceURL: getEnv("ORDER_SERVICE_URL", "http://localhost:8082"),

		PaymentApproveRate: getEnvFloat("PAYMENT_APPROVE_RATE", 1.0),
		PaymentDelayMS:     getEnvInt("PAYMENT_DELAY_MS", 0),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}

	return f
}
