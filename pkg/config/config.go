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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	HTTP          HTTPConfig
	FeatureFlags  FeatureFlagsConfig
	Cron          CronConfig
	Uploads       UploadsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CALLCENTER_APP_ENV" required:"true"`
	Port         string `envconfig:"CALLCENTER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CALLCENTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CALLCENTER_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CALLCENTER_LOG_FORMAT" default:"json"`
	Timezone     string `envconfig:"CALLCENTER_APP_TIMEZONE" default:"UTC"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// Location resolves the timezone that defines a calendar day for task bookkeeping.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

type ServiceConfig struct {
	Kind string `envconfig:"CALLCENTER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CALLCENTER_DB_DSN"`
	Driver string `envconfig:"CALLCENTER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CALLCENTER_DB_HOST"`
	LegacyPort     int    `envconfig:"CALLCENTER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CALLCENTER_DB_USER"`
	LegacyPassword string `envconfig:"CALLCENTER_DB_PASSWORD"`
	LegacyName     string `envconfig:"CALLCENTER_DB_NAME"`
	LegacySSLMode  string `envconfig:"CALLCENTER_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"CALLCENTER_SQLITE_PATH" default:"callcenter.db"`

	MaxOpenConns    int           `envconfig:"CALLCENTER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CALLCENTER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CALLCENTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CALLCENTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"CALLCENTER_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CALLCENTER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CALLCENTER_REDIS_ADDR"`
	Password     string        `envconfig:"CALLCENTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"CALLCENTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CALLCENTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CALLCENTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CALLCENTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CALLCENTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CALLCENTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CALLCENTER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CALLCENTER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CALLCENTER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CALLCENTER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CALLCENTER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CALLCENTER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CALLCENTER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CALLCENTER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CALLCENTER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CALLCENTER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CALLCENTER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"CALLCENTER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type HTTPConfig struct {
	RequestsPerMinute   int           `envconfig:"CALLCENTER_HTTP_REQUESTS_PER_MINUTE" default:"300"`
	AllowedOrigins      []string      `envconfig:"CALLCENTER_HTTP_ALLOWED_ORIGINS" default:"*"`
	IdempotencyTTL      time.Duration `envconfig:"CALLCENTER_HTTP_IDEMPOTENCY_TTL" default:"24h"`
	ReadHeaderTimeout   time.Duration `envconfig:"CALLCENTER_HTTP_READ_HEADER_TIMEOUT" default:"10s"`
	ShutdownGracePeriod time.Duration `envconfig:"CALLCENTER_HTTP_SHUTDOWN_GRACE" default:"15s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CALLCENTER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CALLCENTER_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	LockTTL       time.Duration `envconfig:"CALLCENTER_CRON_LOCK_TTL" default:"1h"`
	RunOnStart    bool          `envconfig:"CALLCENTER_CRON_RUN_ON_START" default:"true"`
	CallRetention time.Duration `envconfig:"CALLCENTER_CALL_RETENTION" default:"24h"`
	MetricsAddr   string        `envconfig:"CALLCENTER_CRON_METRICS_ADDR" default:":9091"`
}

type UploadsConfig struct {
	MaxUploadMB int `envconfig:"CALLCENTER_MAX_UPLOAD_MB" default:"5"`
	MaxNumbers  int `envconfig:"CALLCENTER_MAX_UPLOAD_NUMBERS" default:"10000"`
}

// MaxUploadBytes returns the multipart size cap for number uploads.
func (u UploadsConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
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
