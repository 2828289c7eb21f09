package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port           string
	PostgresDSN    string
	MongoURI       string
	RedisAddr      string
	RabbitURL      string
	JWTSecret      string
	BcryptCost     int
	AccessTokenTTL time.Duration
	ShowCacheTTL   time.Duration
	IdempotencyTTL time.Duration
	OTLPEndpoint   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		MongoURI:       os.Getenv("MONGO_URI"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		BcryptCost:     bcrypt.DefaultCost,
		AccessTokenTTL: getduration("ACCESS_TOKEN_TTL", 30*time.Minute),
		ShowCacheTTL:   getduration("SHOW_CACHE_TTL", 30*time.Second),
		IdempotencyTTL: getduration("IDEMPOTENCY_TTL", time.Hour),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil && cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			cfg.BcryptCost = cost
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	d, _ := time.ParseDuration(os.Getenv(key))
	if d == 0 {
		return def
	}
	return d
}
