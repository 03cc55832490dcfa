package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	PublicURL    string
	CORSOrigin   string
	JWTSecret    string
	TokenTTL     time.Duration
	AdminEmail   string
	AdminPass    string
	DatabaseURL  string
	PoolSize     int
	KafkaBrokers []string
	KafkaTopic   string
	GelfAddr     string
	LogLevel     string
	Locale       string
	Timezone     string
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, is loaded first and never overrides variables
// that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:     getEnv("KYC_ADDR", ":8080"),
		PublicURL:    strings.TrimRight(getEnv("KYC_PUBLIC_URL", "http://localhost:5173"), "/"),
		CORSOrigin:   getEnv("KYC_CORS_ORIGIN", "*"),
		JWTSecret:    getEnv("KYC_JWT_SECRET", "kycdesk-dev-secret-change-me"),
		TokenTTL:     getEnvDuration("KYC_TOKEN_TTL", 24*time.Hour),
		AdminEmail:   getEnv("KYC_ADMIN_EMAIL", "admin@kycdesk.local"),
		AdminPass:    getEnv("KYC_ADMIN_PASS", "admin12345"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		PoolSize:     getEnvInt("KYC_DB_POOL_SIZE", 4),
		KafkaBrokers: getEnvList("KYC_KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KYC_KAFKA_TOPIC", "kyc.report-shares"),
		GelfAddr:     os.Getenv("KYC_GELF_ADDR"),
		LogLevel:     getEnv("KYC_LOG_LEVEL", "info"),
		Locale:       getEnv("KYC_LOCALE", "en-US"),
		Timezone:     getEnv("KYC_TIMEZONE", "UTC"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
