package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Resolver     ResolverConfig
	JWT          JWTConfig
	HTTP         HTTPConfig
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
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRICES_APP_ENV" required:"true"`
	Port         string `envconfig:"PRICES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRICES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRICES_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"PRICES_APP_TIMEZONE" default:"UTC"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the timezone used for query timestamps that carry no offset.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvAppTimezone, name, err)
	}
	return loc, nil
}

type DBConfig struct {
	DSN    string `envconfig:"PRICES_DB_DSN"`
	Driver string `envconfig:"PRICES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRICES_DB_HOST"`
	LegacyPort     int    `envconfig:"PRICES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRICES_DB_USER"`
	LegacyPassword string `envconfig:"PRICES_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRICES_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRICES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRICES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRICES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRICES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRICES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded sqlite driver was requested.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional; an empty URL and address leaves the cache disabled.
type RedisConfig struct {
	URL          string        `envconfig:"PRICES_REDIS_URL"`
	Address      string        `envconfig:"PRICES_REDIS_ADDR"`
	Password     string        `envconfig:"PRICES_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRICES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRICES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRICES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRICES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRICES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRICES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether enough settings exist to dial Redis.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CacheConfig struct {
	Enabled bool          `envconfig:"PRICES_CACHE_ENABLED" default:"false"`
	TTL     time.Duration `envconfig:"PRICES_CACHE_TTL" default:"5m"`
}

type ResolverConfig struct {
	// Pushdown asks the store for the winning row instead of resolving in memory.
	Pushdown bool `envconfig:"PRICES_RESOLVER_PUSHDOWN" default:"false"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRICES_JWT_SECRET"`
	Issuer            string `envconfig:"PRICES_JWT_ISSUER" default:"prices"`
	ExpirationMinutes int    `envconfig:"PRICES_JWT_EXPIRATION_MINUTES" default:"60"`
}

type HTTPConfig struct {
	RateLimitRPS   float64 `envconfig:"PRICES_HTTP_RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst int     `envconfig:"PRICES_HTTP_RATE_LIMIT_BURST" default:"100"`
	// TrustProxy keys rate limits on X-Real-IP / X-Forwarded-For instead of the peer address.
	TrustProxy   bool          `envconfig:"PRICES_HTTP_TRUST_PROXY" default:"false"`
	CORSOrigins  []string      `envconfig:"PRICES_HTTP_CORS_ORIGINS" default:"*"`
	ReadTimeout  time.Duration `envconfig:"PRICES_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"PRICES_HTTP_WRITE_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRICES_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
