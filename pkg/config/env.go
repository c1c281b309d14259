package config

// EnvPrefix is handed to envconfig; every field carries an explicit name so it is informational only.
const EnvPrefix = "PRICES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv      = "PRICES_APP_ENV"
	EnvPort        = "PRICES_APP_PORT"
	EnvLogLevel    = "PRICES_LOG_LEVEL"
	EnvAppTimezone = "PRICES_APP_TIMEZONE"

	EnvDBDSN    = "PRICES_DB_DSN"
	EnvDBDriver = "PRICES_DB_DRIVER"
	EnvDBHost   = "PRICES_DB_HOST"
	EnvDBUser   = "PRICES_DB_USER"
	EnvDBName   = "PRICES_DB_NAME"

	EnvRedisURL     = "PRICES_REDIS_URL"
	EnvCacheEnabled = "PRICES_CACHE_ENABLED"
	EnvCacheTTL     = "PRICES_CACHE_TTL"

	EnvResolverPushdown = "PRICES_RESOLVER_PUSHDOWN"

	EnvJWTSecret = "PRICES_JWT_SECRET"
	EnvJWTIssuer = "PRICES_JWT_ISSUER"

	EnvCORSOrigins = "PRICES_HTTP_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
