package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Env  string
	Port string

	DBDriver    string // mysql | postgres | sqlite
	DBPath      string // sqlite file
	PostgresDSN string
	DBLogLevel  string // silent | error | warn | info
	SeedDemo    bool

	JWTSecret   string
	CorsOrigins []string

	RabbitMQURL string
	EventQueue  string

	RateLimit RateLimitConfig

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// RateLimitConfig drives the Redis token bucket on mutating routes.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// Load reads .env when present and builds the Config.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:         envOrDefault("APP_ENV", "development"),
		Port:        envOrDefault("PORT", "8080"),
		DBDriver:    strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
		DBPath:      envOrDefault("DB_PATH", "hotel.db"),
		PostgresDSN: envOrDefault("DB_CONNECTION_STRING", ""),
		DBLogLevel:  strings.ToLower(envOrDefault("DB_LOG_LEVEL", "warn")),
		SeedDemo:    envBool("SEED_DEMO", false),

		JWTSecret:   envOrDefault("JWT_SECRET", ""),
		CorsOrigins: parseCorsOrigins(os.Getenv("CORS_ORIGINS")),

		RabbitMQURL: rabbitURL(),
		EventQueue:  envOrDefault("EVENT_QUEUE", "reservation.events"),

		RateLimit: loadRateLimit(),

		ReadTimeout:     envDur("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    envDur("HTTP_WRITE_TIMEOUT", 20*time.Second),
		ShutdownTimeout: envDur("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	return cfg
}

func loadRateLimit() RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envOrDefault("RATE_LIMIT_PREFIX", "rl"),
	}
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	return rl
}

// rabbitURL returns "" when no broker is configured so events stay local.
func rabbitURL() string {
	if v := strings.TrimSpace(os.Getenv("RABBITMQ_URL")); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("AMQP_URL"))
}

// parseCorsOrigins splits a comma separated list. Empty input allows any origin.
func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return n
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return d
	}
	return def
}
