package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Engine        EngineConfig
	FeatureFlags  FeatureFlagsConfig
	Seed          SeedConfig
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
	Env          string `envconfig:"STOREFLOW_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFLOW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STOREFLOW_DB_DSN"`

	Host     string `envconfig:"STOREFLOW_DB_HOST"`
	Port     int    `envconfig:"STOREFLOW_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFLOW_DB_USER"`
	Password string `envconfig:"STOREFLOW_DB_PASSWORD"`
	Name     string `envconfig:"STOREFLOW_DB_NAME"`
	SSLMode  string `envconfig:"STOREFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db config: set STOREFLOW_DB_DSN or host/user/name parts")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

// RedisConfig is optional; an empty URL and address disables the login rate
// limiter instead of failing boot.
type RedisConfig struct {
	URL          string        `envconfig:"STOREFLOW_REDIS_URL"`
	Address      string        `envconfig:"STOREFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFLOW_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"STOREFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFLOW_JWT_ISSUER" default:"storeflow"`
	ExpirationMinutes int    `envconfig:"STOREFLOW_JWT_EXPIRATION_MINUTES" default:"480"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFLOW_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOREFLOW_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"STOREFLOW_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOREFLOW_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// EngineConfig tunes the availability prober and the fallback store.
type EngineConfig struct {
	ProbeInterval     time.Duration `envconfig:"STOREFLOW_ENGINE_PROBE_INTERVAL" default:"30s"`
	ProbeBackoffBase  time.Duration `envconfig:"STOREFLOW_ENGINE_PROBE_BACKOFF_BASE" default:"2s"`
	ProbeBackoffCap   time.Duration `envconfig:"STOREFLOW_ENGINE_PROBE_BACKOFF_CAP" default:"1m"`
	ProbeTimeout      time.Duration `envconfig:"STOREFLOW_ENGINE_PROBE_TIMEOUT" default:"5s"`
	LowStockThreshold int           `envconfig:"STOREFLOW_ENGINE_LOW_STOCK_THRESHOLD" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFLOW_AUTO_MIGRATE" default:"false"`
}

// SeedConfig drives the in-memory fallback credentials when the relational
// store is down at boot.
type SeedConfig struct {
	AdminUsername string `envconfig:"STOREFLOW_SEED_ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"STOREFLOW_SEED_ADMIN_PASSWORD" default:"admin123"`
}
