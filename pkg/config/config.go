package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "MERCADITO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Backend      BackendConfig
	Geo          GeoConfig
	Session      SessionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MERCADITO_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCADITO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MERCADITO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCADITO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MERCADITO_DB_DSN"`

	Host     string `envconfig:"MERCADITO_DB_HOST"`
	Port     int    `envconfig:"MERCADITO_DB_PORT" default:"5432"`
	User     string `envconfig:"MERCADITO_DB_USER"`
	Password string `envconfig:"MERCADITO_DB_PASSWORD"`
	Name     string `envconfig:"MERCADITO_DB_NAME"`
	SSLMode  string `envconfig:"MERCADITO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCADITO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCADITO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCADITO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCADITO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCADITO_REDIS_URL"`
	Address      string        `envconfig:"MERCADITO_REDIS_ADDR"`
	Password     string        `envconfig:"MERCADITO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCADITO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCADITO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCADITO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCADITO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCADITO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCADITO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MERCADITO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MERCADITO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MERCADITO_JWT_EXPIRATION_MINUTES" default:"60"`
}

// BackendConfig points at the remote order backend that owns order state.
type BackendConfig struct {
	BaseURL string        `envconfig:"MERCADITO_BACKEND_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"MERCADITO_BACKEND_API_KEY"`
	Timeout time.Duration `envconfig:"MERCADITO_BACKEND_TIMEOUT" default:"15s"`
}

// GeoConfig points at the routing collaborator used to resolve travel distance.
type GeoConfig struct {
	BaseURL string        `envconfig:"MERCADITO_GEO_BASE_URL"`
	APIKey  string        `envconfig:"MERCADITO_GEO_API_KEY"`
	Timeout time.Duration `envconfig:"MERCADITO_GEO_TIMEOUT" default:"10s"`
}

// SessionConfig controls ordering-session housekeeping.
type SessionConfig struct {
	// RevalidateInterval is the cadence of the background token
	// revalidation poll. It runs independently of order handling.
	RevalidateInterval time.Duration `envconfig:"MERCADITO_SESSION_REVALIDATE_INTERVAL" default:"5m"`
	// InFlightTTL bounds the per-order submit/transition lock so a crashed
	// request cannot wedge an order forever.
	InFlightTTL time.Duration `envconfig:"MERCADITO_SESSION_IN_FLIGHT_TTL" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERCADITO_FEATURE_AUTO_MIGRATE" default:"false"`
}
