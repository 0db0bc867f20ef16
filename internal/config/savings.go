package config

import (
	"os"
	"strconv"
	"time"
)

type SavingsConfig struct {
	MinimumDeposit     int64 // kobo
	QuarterlyRateBps   int   // interest per quarter, in basis points
	DepositCallbackURL string
	DepositSessionTTL  time.Duration
	JournalPageSize    int
}

func LoadSavingsConfig() *SavingsConfig {
	return &SavingsConfig{
		MinimumDeposit:     getEnvAsInt64("SAVINGS_MINIMUM_DEPOSIT", 100000), // ₦1,000
		QuarterlyRateBps:   getEnvAsInt("SAVINGS_QUARTERLY_RATE_BPS", 250),   // 2.5% per quarter (10% p.a.)
		DepositCallbackURL: getEnv("SAVINGS_DEPOSIT_CALLBACK_URL", "http://localhost:3000/savings/deposit/callback"),
		DepositSessionTTL:  getEnvAsDuration("SAVINGS_DEPOSIT_SESSION_TTL", 30*time.Minute),
		JournalPageSize:    getEnvAsInt("SAVINGS_JOURNAL_PAGE_SIZE", 50),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
