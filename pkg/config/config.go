package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DAILYFISH"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "DAILYFISH_APP_ENV"
	EnvDBDSN  = "DAILYFISH_DB_DSN"
	EnvDBHost = "DAILYFISH_DB_HOST"
	EnvDBUser = "DAILYFISH_DB_USER"
	EnvDBName = "DAILYFISH_DB_NAME"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Admin         AdminConfig
	Checkout      CheckoutConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"DAILYFISH_APP_ENV" required:"true"`
	Port         string `envconfig:"DAILYFISH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DAILYFISH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DAILYFISH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DAILYFISH_DB_DSN"`
	Driver string `envconfig:"DAILYFISH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DAILYFISH_DB_HOST"`
	LegacyPort     int    `envconfig:"DAILYFISH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DAILYFISH_DB_USER"`
	LegacyPassword string `envconfig:"DAILYFISH_DB_PASSWORD"`
	LegacyName     string `envconfig:"DAILYFISH_DB_NAME"`
	LegacySSLMode  string `envconfig:"DAILYFISH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DAILYFISH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DAILYFISH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DAILYFISH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DAILYFISH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DAILYFISH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DAILYFISH_REDIS_ADDR"`
	Password     string        `envconfig:"DAILYFISH_REDIS_PASSWORD"`
	DB           int           `envconfig:"DAILYFISH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DAILYFISH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DAILYFISH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DAILYFISH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DAILYFISH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DAILYFISH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DAILYFISH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DAILYFISH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DAILYFISH_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DAILYFISH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DAILYFISH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DAILYFISH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DAILYFISH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DAILYFISH_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DAILYFISH_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DAILYFISH_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DAILYFISH_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DAILYFISH_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DAILYFISH_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DAILYFISH_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// AdminConfig feeds the idempotent admin bootstrap that runs at startup.
type AdminConfig struct {
	Email         string `envconfig:"DAILYFISH_ADMIN_EMAIL"`
	Username      string `envconfig:"DAILYFISH_ADMIN_USERNAME" default:"admin"`
	Password      string `envconfig:"DAILYFISH_ADMIN_PASSWORD"`
	ResetPassword bool   `envconfig:"DAILYFISH_ADMIN_RESET_PASSWORD" default:"false"`
}

// Enabled reports whether enough credentials were supplied to bootstrap an admin.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

type CheckoutConfig struct {
	OrderNumberPrefix        string `envconfig:"DAILYFISH_ORDER_NUMBER_PREFIX" default:"ORD"`
	OrderNumberMaxAttempts   int    `envconfig:"DAILYFISH_ORDER_NUMBER_MAX_ATTEMPTS" default:"5"`
	DefaultLowStockThreshold string `envconfig:"DAILYFISH_DEFAULT_LOW_STOCK_THRESHOLD" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DAILYFISH_AUTO_MIGRATE" default:"false"`
}

// ensureDSN assembles a postgres URL from the discrete DB_* variables when no
// full DSN was provided. Deployments are expected to migrate to DB_DSN; the
// discrete form exists for older compose files.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for env, value := range map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.LegacyUser, db.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacyPassword == "" {
		dsn.User = url.User(db.LegacyUser)
	}
	if db.LegacySSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {db.LegacySSLMode}}.Encode()
	}

	db.DSN = dsn.String()
	return nil
}
