package hostycare

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BaseURL  string
	Username string
	APIKey   string

	Timeout time.Duration

	RetryCount int
	RetryDelay time.Duration

	RateLimit int
	RateBurst int

	CircuitBreakerEnabled bool
	CBFailureThreshold    int
	CBRecoveryTime        time.Duration
	CBMinRequests         int
	CBSamplingDuration    time.Duration
	CBHalfOpenMaxSuccess  int
}

func LoadFromEnv() Config {
	return Config{
		BaseURL:  getStr("HOSTYCARE_BASE_URL", "https://hostycare.com/reseller/api"),
		Username: os.Getenv("HOSTYCARE_USERNAME"),
		APIKey:   os.Getenv("HOSTYCARE_API_KEY"),

		Timeout: time.Second * time.Duration(getInt("HOSTYCARE_TIMEOUT", 60)),

		RetryCount: getInt("HOSTYCARE_RETRY_COUNT", 2),
		RetryDelay: time.Second * time.Duration(getInt("HOSTYCARE_RETRY_DELAY", 2)),

		RateLimit: getInt("HOSTYCARE_RATE_LIMIT", 60),
		RateBurst: getInt("HOSTYCARE_RATE_BURST", 2),

		CircuitBreakerEnabled: getBool("HOSTYCARE_ENABLE_CIRCUIT_BREAKER", true),
		CBFailureThreshold:    getInt("HOSTYCARE_CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
		CBRecoveryTime:        time.Second * time.Duration(getInt("HOSTYCARE_CIRCUIT_BREAKER_RECOVERY_TIME", 60)),
		CBMinRequests:         getInt("HOSTYCARE_CIRCUIT_BREAKER_MIN_REQUESTS", 10),
		CBSamplingDuration:    time.Second * time.Duration(getInt("HOSTYCARE_CIRCUIT_BREAKER_SAMPLING_DURATION", 60)),
		CBHalfOpenMaxSuccess:  getInt("HOSTYCARE_CIRCUIT_BREAKER_HALF_OPEN_MAX_SUCCESS", 3),
	}
}

func getStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		return v == "true"
	}
	return def
}
