package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Port        string
	Environment string

	AdminAPIToken string

	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// Wallet alerting. Balances are stored in paise.
	WalletMinBalance int64

	// Renewal pricing: default period added per renewal, in days.
	RenewalPeriodDays int

	// IP backfill delay for provisions that return without an address, seconds.
	IPBackfillDelaySeconds int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	_ = godotenv.Load()
	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:                getenv("APP_SERVICE", "oceanlinux-broker"),
		AppVersion:             getenv("APP_VERSION", "0.1.0"),
		Port:                   getenv("PORT", "8080"),
		Environment:            environment,
		AdminAPIToken:          strings.TrimSpace(getenv("ADMIN_API_TOKEN", "")),
		DBHost:                 getenv("DB_HOST", "localhost"),
		DBPort:                 getenv("DB_PORT", "5432"),
		DBName:                 getenv("DB_NAME", "oceanlinux"),
		DBUser:                 getenv("DB_USER", "postgres"),
		DBPassword:             getenv("DB_PASSWORD", ""),
		DBSSLMode:              getenv("DB_SSL_MODE", "disable"),
		DBMaxIdleConn:          getenvInt("DB_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:          getenvInt("DB_MAX_OPEN_CONN", 100),
		DBConnMaxLifetime:      getenvInt("DB_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime:      getenvInt("DB_CONN_MAX_IDLE_TIME", 60),
		WalletMinBalance:       getenvInt64("WALLET_MIN_BALANCE", 0),
		RenewalPeriodDays:      getenvInt("RENEWAL_PERIOD_DAYS", 30),
		IPBackfillDelaySeconds: getenvInt("IP_BACKFILL_DELAY_SECONDS", 30),
	}

	return &cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
