package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,        default=8080"`
	Env       string `env:"ENV,         default=development"`
	LogLevel  string `env:"LOG_LEVEL,   default=info"`
	SQLite    SQLiteConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	StaticDir string `env:"STATIC_DIR,  default=web"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=data/sync.db"`
}

// RedisConfig is optional: when Addr is empty, rate limiting falls back to
// in-memory token buckets.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB,    default=0"`
}

// RateLimitConfig holds the two independent transport limits: a general API
// limit and a stricter one for the sync endpoints.
type RateLimitConfig struct {
	APIRequests        int `env:"RATE_LIMIT_API_REQUESTS,   default=100"`
	APIWindowMinutes   int `env:"RATE_LIMIT_API_WINDOW_MIN, default=15"`
	SyncRequests       int `env:"RATE_LIMIT_SYNC_REQUESTS,  default=30"`
	SyncWindowSeconds  int `env:"RATE_LIMIT_SYNC_WINDOW_SEC, default=60"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
