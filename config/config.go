package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything read from the environment, loaded once in main.
type Config struct {
	Port        string
	StoreDriver string // "sqlite" or "memory"
	DBPath      string
	JWTSecret   []byte

	// Store calls are bounded by this timeout; exceeding it surfaces a
	// retryable storage error.
	StoreTimeout time.Duration

	// Static receiving account for bank-transfer / QR payments.
	BankName        string
	BankAccount     string
	BankAccountName string

	// Bootstrap admin, created on startup if no account exists for the
	// email. Admins are never self-registered.
	AdminEmail    string
	AdminPassword string
}

// Load reads .env if present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	timeout := 5 * time.Second
	if v := os.Getenv("STORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		StoreDriver:     getEnv("STORE", "sqlite"),
		DBPath:          getEnv("DB_PATH", "fitmeal.db"),
		JWTSecret:       []byte(getEnv("JWT_SECRET", "fitmeal_super_secret_2024")),
		StoreTimeout:    timeout,
		BankName:        getEnv("BANK_NAME", "Vietcombank"),
		BankAccount:     getEnv("BANK_ACCOUNT", "0123456789"),
		BankAccountName: getEnv("BANK_ACCOUNT_NAME", "FITMEAL JSC"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
