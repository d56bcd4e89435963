package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for every binary.
type Config struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"development"`
	Port         string        `envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"APP_IDLE_TIMEOUT" default:"60s"`

	DB    DatabaseConfig
	Redis RedisConfig

	KafkaBroker        string        `envconfig:"KAFKA_BROKER"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"3s"`
	ConsumerGroupID    string        `envconfig:"CONSUMER_GROUP_ID" default:"hr-portal-leave-balance"`
	WorkerMetricsPort  string        `envconfig:"WORKER_METRICS_PORT" default:"9100"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	UploadDir          string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadBytes     int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	EnforceReceipt     bool          `envconfig:"REIMBURSEMENT_ENFORCE_RECEIPT" default:"false"`
	RosterCacheTTL     time.Duration `envconfig:"ROSTER_CACHE_TTL" default:"5m"`
	RateLimitPerSecond float64       `envconfig:"RATE_LIMIT_PER_SECOND" default:"10"`
	RateLimitBurst     int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
	ConnectRetries     int           `envconfig:"CONNECT_RETRIES" default:"5"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"hr_portal"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

type RedisConfig struct {
	Addr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ConnectRetries < 1 {
		return nil, errors.New("CONNECT_RETRIES must be at least 1")
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
