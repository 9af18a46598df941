package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string

	ServerPort int
	LogLevel   string

	DatabaseURL string

	JWTSecret []byte

	MercadoPagoToken   string
	MercadoPagoBaseURL string
	MercadoPagoTimeout time.Duration

	FrontendURL string
	APIURL      string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "planeta-agua-api"),

		ServerPort: EnvIntDefault("PORT", 3001),
		LogLevel:   os.Getenv("LOG_LEVEL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		MercadoPagoToken:   os.Getenv("MP_ACCESS_TOKEN"),
		MercadoPagoBaseURL: EnvDefault("MP_BASE_URL", "https://api.mercadopago.com"),
		MercadoPagoTimeout: EnvDurationDefault("MP_TIMEOUT", 10*time.Second),

		FrontendURL: strings.TrimRight(EnvDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
		APIURL:      strings.TrimRight(EnvDefault("API_URL", "http://localhost:3001"), "/"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RateLimitPerMinute: EnvIntDefault("RATE_LIMIT_PER_MINUTE", 20),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
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

// EnvDurationDefault accepts Go durations ("5s") or a bare number of milliseconds.
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
