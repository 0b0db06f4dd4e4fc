package config

import (
	"os"
	"strconv"
	"time"
)

type ReconcileConfig struct {
	CronSecret           string
	EmailAPIURL          string
	EmailAPIKey          string
	EmailFromAddress     string
	EmailTimeout         time.Duration
	WinTemplateName      string
	MaxTriggersPerCaller int
	RateLimitWindow      time.Duration
	WinEventQueue        string
}

func LoadReconcileConfig() *ReconcileConfig {
	return &ReconcileConfig{
		CronSecret:           getEnv("RECONCILE_CRON_SECRET", ""),
		EmailAPIURL:          getEnv("EMAIL_API_URL", ""),
		EmailAPIKey:          getEnv("EMAIL_API_KEY", ""),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", "wins@luckpool.app"),
		EmailTimeout:         getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		WinTemplateName:      getEnv("WIN_TEMPLATE_NAME", "pool_win"),
		MaxTriggersPerCaller: getEnvAsInt("RECONCILE_MAX_TRIGGERS", 10),
		RateLimitWindow:      getEnvAsDuration("RECONCILE_RATE_WINDOW", 1*time.Hour),
		WinEventQueue:        getEnv("WIN_EVENT_QUEUE", "win_events"),
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

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
