package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/tenantdesk-backend/internal/data/db"
	"github.com/yungbote/tenantdesk-backend/internal/platform/config"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR"`
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"dev"`

	DBDriver        string        `env:"DB_DRIVER" envDefault:"postgres"`
	DBDSN           string        `env:"DB_DSN"`
	DBSlowThreshold time.Duration `env:"DB_SLOW_THRESHOLD" envDefault:"200ms"`

	JWTSecretKey     string        `env:"JWT_SECRET_KEY" envDefault:"defaultsecret"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"tenantdesk"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	PolicyFile       string        `env:"POLICY_FILE"`
	DevTokensEnabled bool          `env:"DEV_TOKENS_ENABLED"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	CachePrefix   string `env:"CACHE_PREFIX" envDefault:"tenantdesk"`

	SlowRequestThreshold time.Duration `env:"SLOW_REQUEST_THRESHOLD" envDefault:"500ms"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MetricsEnabled       bool          `env:"METRICS_ENABLED" envDefault:"true"`
	AuditStoreEnabled    bool          `env:"AUDIT_STORE_ENABLED" envDefault:"true"`
	CORSOrigins          []string      `env:"CORS_ORIGINS" envSeparator:","`

	OtelEnabled     bool              `env:"OTEL_ENABLED"`
	OtelServiceName string            `env:"OTEL_SERVICE_NAME" envDefault:"tenantdesk"`
	OtelEndpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelInsecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelHeaders     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS" envSeparator:"," envKeyValSeparator:"="`
	OtelExporter    string            `env:"OTEL_EXPORTER"`
	OtelSampleRatio float64           `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
}

// LoadConfig parses Config from the environment and checks it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("DB_DSN: required")
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY: required")
	}
	if c.isProduction() && c.JWTSecretKey == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET_KEY: default secret is not allowed in production")
	}
	if c.isProduction() && c.DevTokensEnabled {
		return fmt.Errorf("DEV_TOKENS_ENABLED: not allowed in production")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL: must be positive")
	}
	return nil
}

func (c Config) isProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "prod", "production":
		return true
	default:
		return false
	}
}
