package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// RedisAddr enables the redis session store, snapshot cache and job queue.
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	AuthUsername string        `envconfig:"AUTH_USERNAME" default:"admin"`
	AuthPassword string        `envconfig:"AUTH_PASSWORD" default:"admin"`
	LoginDelay   time.Duration `envconfig:"LOGIN_DELAY" default:"800ms"`

	EpochWindow    time.Duration `envconfig:"SCORECARD_EPOCH_WINDOW" default:"24h"`
	CacheTTL       time.Duration `envconfig:"SCORECARD_CACHE_TTL" default:"10m"`
	UploadMaxBytes int64         `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
	UploadMaxRows  int           `envconfig:"UPLOAD_MAX_ROWS" default:"5000"`
	RiskScanCron   string        `envconfig:"RISK_SCAN_CRON" default:"@every 1h"`

	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	if c.EpochWindow <= 0 {
		return errors.New("scorecard epoch window must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// RedisEnabled reports whether a redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c != nil && c.RedisAddr != ""
}
