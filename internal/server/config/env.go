package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded, when present, before BM_* variables are read.
// Variables already set in the process environment win.
var envFile = ".env"

func parseEnv(cfg *Config) {
	_ = godotenv.Load(envFile)

	cfg.HTTPAddr = getenv("BM_HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseDSN = getenv("BM_DATABASE_DSN", cfg.DatabaseDSN)
	cfg.SecretKey = getenv("BM_SECRET_KEY", cfg.SecretKey)
	cfg.LogBackend = getenv("BM_LOG_BACKEND", cfg.LogBackend)
	cfg.AccessTokenValidityDuration = getenvDuration("BM_ACCESS_TOKEN_TTL", cfg.AccessTokenValidityDuration)
	cfg.RefreshTokenValidityDuration = getenvDuration("BM_REFRESH_TOKEN_TTL", cfg.RefreshTokenValidityDuration)
	cfg.RememberMeValidityDuration = getenvDuration("BM_REMEMBER_ME_TTL", cfg.RememberMeValidityDuration)
	cfg.S3RootUser = getenv("BM_S3_ROOT_USER", cfg.S3RootUser)
	cfg.S3RootPassword = getenv("BM_S3_ROOT_PASSWORD", cfg.S3RootPassword)
	cfg.S3Bucket = getenv("BM_S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getenv("BM_S3_REGION", cfg.S3Region)
	cfg.S3BaseEndpoint = getenv("BM_S3_BASE_ENDPOINT", cfg.S3BaseEndpoint)
	cfg.RedisAddr = getenv("BM_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getenv("BM_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RateCacheTTL = getenvDuration("BM_RATE_CACHE_TTL", cfg.RateCacheTTL)
	cfg.SuperAdminEmails = getenvList("BM_SUPERADMIN_EMAILS", cfg.SuperAdminEmails)
	cfg.LockoutMaxAttempts = getenvInt("BM_LOCKOUT_MAX_ATTEMPTS", cfg.LockoutMaxAttempts)
	cfg.LockoutDuration = getenvDuration("BM_LOCKOUT_DURATION", cfg.LockoutDuration)
	cfg.TrustedProxies = getenvList("BM_TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.MailLogBodies = getenvBool("BM_MAIL_LOG_BODIES", cfg.MailLogBodies)
	cfg.OnlineWindow = getenvDuration("BM_ONLINE_WINDOW", cfg.OnlineWindow)
	cfg.DollarRateURL = getenv("BM_DOLLAR_RATE_URL", cfg.DollarRateURL)
	cfg.ExchangeRatesURL = getenv("BM_EXCHANGE_RATES_URL", cfg.ExchangeRatesURL)
	cfg.RAWGBaseURL = getenv("BM_RAWG_BASE_URL", cfg.RAWGBaseURL)
	cfg.RAWGAPIKey = getenv("BM_RAWG_API_KEY", cfg.RAWGAPIKey)
	cfg.HealthCheckSchedule = getenv("BM_HEALTH_CHECK_SCHEDULE", cfg.HealthCheckSchedule)
	cfg.OnlineUsersSchedule = getenv("BM_ONLINE_USERS_SCHEDULE", cfg.OnlineUsersSchedule)
	cfg.DollarRateSchedule = getenv("BM_DOLLAR_RATE_SCHEDULE", cfg.DollarRateSchedule)
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return splitList(value)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
