package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	HTTP     HTTPConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Tracing  TracingConfig
	Dispatch DispatchConfig
}

type AuthConfig struct {
	TokenSecret string        `env:"ACCESS_TOKEN_SECRET, required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,           default=24h"`
}

type HTTPConfig struct {
	CORSOrigins  []string `env:"CORS_ORIGINS,   default=http://localhost:5173"`
	RateLimitRPS float64  `env:"RATE_LIMIT_RPS, default=10"`
	BodyLimit    string   `env:"BODY_LIMIT,     default=1M"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cyco"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type PaymentConfig struct {
	SecretKey string `env:"PAYMENT_SECRET_KEY"`
}

type TracingConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED,  default=false"`
	Endpoint string `env:"OTEL_ENDPOINT, default=localhost:4317"`
}

type DispatchConfig struct {
	Workers int `env:"DISPATCH_WORKERS, default=8"`
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
