package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ORDERFLOW"

	ProviderModeHTTP = "http"
	ProviderModeFake = "fake"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Webhook  WebhookConfig
	Provider ProviderConfig
	Jobs     JobsConfig
	Outbox   OutboxConfig
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDBConfig reads only the database settings, for tools that do not run
// the engine.
func LoadDBConfig(envFiles ...string) (DBConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DBConfig{}, fmt.Errorf("loading env file: %w", err)
	}

	var cfg DBConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return DBConfig{}, fmt.Errorf("parsing db config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that depend on each other.
func (c Config) Validate() error {
	var errList []error

	switch c.Provider.Mode {
	case ProviderModeFake:
	case ProviderModeHTTP:
		if c.Provider.BaseURL == "" {
			errList = append(errList, errors.New("ORDERFLOW_PROVIDER_BASE_URL is required in http mode"))
		} else if _, err := url.ParseRequestURI(c.Provider.BaseURL); err != nil {
			errList = append(errList, fmt.Errorf("ORDERFLOW_PROVIDER_BASE_URL: %w", err))
		}
		if c.Provider.APIKey == "" {
			errList = append(errList, errors.New("ORDERFLOW_PROVIDER_API_KEY is required in http mode"))
		}
	default:
		errList = append(errList, fmt.Errorf("unknown provider mode %q", c.Provider.Mode))
	}

	if c.Provider.ID <= 0 {
		errList = append(errList, errors.New("ORDERFLOW_PROVIDER_ID must be positive"))
	}
	if _, err := c.Provider.StatusMap(); err != nil {
		errList = append(errList, fmt.Errorf("ORDERFLOW_PROVIDER_STATUS_MAP: %w", err))
	}
	if c.Jobs.ReconcileBatchSize < 1 || c.Jobs.ReconcileBatchSize > 500 {
		errList = append(errList, errors.New("ORDERFLOW_JOBS_RECONCILE_BATCH_SIZE must be within 1..500"))
	}
	if c.Jobs.RelayBatchSize < 1 || c.Jobs.RelayBatchSize > 1000 {
		errList = append(errList, errors.New("ORDERFLOW_JOBS_RELAY_BATCH_SIZE must be within 1..1000"))
	}
	if c.Redis.URL == "" && c.Redis.Address == "" {
		errList = append(errList, errors.New("ORDERFLOW_REDIS_URL or ORDERFLOW_REDIS_ADDR is required"))
	}

	return errors.Join(errList...)
}

type AppConfig struct {
	Env      string `envconfig:"ORDERFLOW_APP_ENV" default:"development"`
	LogLevel string `envconfig:"ORDERFLOW_LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Port         string        `envconfig:"ORDERFLOW_HTTP_PORT" default:"8080"`
	Swagger      bool          `envconfig:"ORDERFLOW_HTTP_SWAGGER" default:"true"`
	WebhookRate  float64       `envconfig:"ORDERFLOW_HTTP_WEBHOOK_RATE" default:"10"`
	WebhookBurst int           `envconfig:"ORDERFLOW_HTTP_WEBHOOK_BURST" default:"20"`
	ShutdownWait time.Duration `envconfig:"ORDERFLOW_HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
}

type DBConfig struct {
	Host     string `envconfig:"ORDERFLOW_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"ORDERFLOW_DB_PORT" default:"5432"`
	User     string `envconfig:"ORDERFLOW_DB_USER" required:"true"`
	Password string `envconfig:"ORDERFLOW_DB_PASSWORD"`
	Name     string `envconfig:"ORDERFLOW_DB_NAME" required:"true"`
	SSLMode  string `envconfig:"ORDERFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns        int           `envconfig:"ORDERFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns        int           `envconfig:"ORDERFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime     time.Duration `envconfig:"ORDERFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	RotationLockTimeout time.Duration `envconfig:"ORDERFLOW_DB_ROTATION_LOCK_TIMEOUT" default:"5s"`
}

// DSN builds a keyword/value connection string accepted by pgx and lib/pq.
func (d DBConfig) DSN() string {
	parts := []string{
		"host=" + d.Host,
		fmt.Sprintf("port=%d", d.Port),
		"user=" + d.User,
		"dbname=" + d.Name,
		"sslmode=" + d.SSLMode,
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}
	return strings.Join(parts, " ")
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERFLOW_REDIS_URL"`
	Address      string        `envconfig:"ORDERFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERFLOW_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"ORDERFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERFLOW_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"ORDERFLOW_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"ORDERFLOW_JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"ORDERFLOW_JWT_ISSUER" default:"orderflow"`
}

type WebhookConfig struct {
	Token string `envconfig:"ORDERFLOW_WEBHOOK_TOKEN" required:"true"`
}

type ProviderConfig struct {
	Mode           string        `envconfig:"ORDERFLOW_PROVIDER_MODE" default:"http"`
	ID             int64         `envconfig:"ORDERFLOW_PROVIDER_ID" required:"true"`
	BaseURL        string        `envconfig:"ORDERFLOW_PROVIDER_BASE_URL"`
	APIKey         string        `envconfig:"ORDERFLOW_PROVIDER_API_KEY"`
	RegisterPath   string        `envconfig:"ORDERFLOW_PROVIDER_REGISTER_PATH" default:"/orders"`
	DeregisterPath string        `envconfig:"ORDERFLOW_PROVIDER_DEREGISTER_PATH" default:"/orders/cancel"`
	Timeout        time.Duration `envconfig:"ORDERFLOW_PROVIDER_TIMEOUT" default:"10s"`
	Rate           float64       `envconfig:"ORDERFLOW_PROVIDER_RATE" default:"5"`
	Burst          int           `envconfig:"ORDERFLOW_PROVIDER_BURST" default:"5"`
	RawStatusMap   string        `envconfig:"ORDERFLOW_PROVIDER_STATUS_MAP" required:"true"`
}

func (p ProviderConfig) StatusMap() (commands.ProviderStatusMap, error) {
	return commands.ParseProviderStatusMap(p.RawStatusMap)
}

type JobsConfig struct {
	Enabled            bool          `envconfig:"ORDERFLOW_JOBS_ENABLED" default:"true"`
	ReconcileSchedule  string        `envconfig:"ORDERFLOW_JOBS_RECONCILE_SCHEDULE" default:"0 */5 * * * *"`
	ReconcileBatchSize int           `envconfig:"ORDERFLOW_JOBS_RECONCILE_BATCH_SIZE" default:"100"`
	ReconcileLockTTL   time.Duration `envconfig:"ORDERFLOW_JOBS_RECONCILE_LOCK_TTL" default:"4m"`
	RelaySchedule      string        `envconfig:"ORDERFLOW_JOBS_RELAY_SCHEDULE" default:"*/5 * * * * *"`
	RelayBatchSize     int           `envconfig:"ORDERFLOW_JOBS_RELAY_BATCH_SIZE" default:"100"`
}

type OutboxConfig struct {
	Stream string `envconfig:"ORDERFLOW_OUTBOX_STREAM" default:"orderflow:order-events"`
	MaxLen int64  `envconfig:"ORDERFLOW_OUTBOX_STREAM_MAXLEN" default:"100000"`
}
