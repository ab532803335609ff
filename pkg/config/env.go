package config

const EnvPrefix = "CALLCENTER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                 = "CALLCENTER_APP_ENV"
	EnvPort                   = "CALLCENTER_APP_PORT"
	EnvTimezone               = "CALLCENTER_APP_TIMEZONE"
	EnvDBDSN                  = "CALLCENTER_DB_DSN"
	EnvDBHost                 = "CALLCENTER_DB_HOST"
	EnvDBUser                 = "CALLCENTER_DB_USER"
	EnvDBName                 = "CALLCENTER_DB_NAME"
	EnvRedisURL               = "CALLCENTER_REDIS_URL"
	EnvJWTSecret              = "CALLCENTER_JWT_SECRET"
	EnvJWTIssuer              = "CALLCENTER_JWT_ISSUER"
	EnvJWTExpMins             = "CALLCENTER_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CALLCENTER_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "CALLCENTER_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
