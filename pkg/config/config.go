package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "VENDORHUB"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "VENDORHUB_APP_ENV"
	EnvPort   = "VENDORHUB_APP_PORT"
	EnvDBDSN  = "VENDORHUB_DB_DSN"
	EnvDBHost = "VENDORHUB_DB_HOST"
	EnvDBUser = "VENDORHUB_DB_USER"
	EnvDBName = "VENDORHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Orders       OrdersConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"VENDORHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDORHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDORHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDORHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORHUB_DB_DSN"`
	Driver string `envconfig:"VENDORHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDORHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDORHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDORHUB_DB_USER"`
	LegacyPassword string `envconfig:"VENDORHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDORHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDORHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDORHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDORHUB_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VENDORHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VENDORHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VENDORHUB_JWT_EXPIRATION_MINUTES" required:"true"`
}

type OrdersConfig struct {
	NumberLength      int           `envconfig:"VENDORHUB_ORDER_NUMBER_LENGTH" default:"12"`
	NumberMaxAttempts int           `envconfig:"VENDORHUB_ORDER_NUMBER_MAX_ATTEMPTS" default:"5"`
	LockTTL           time.Duration `envconfig:"VENDORHUB_ORDER_LOCK_TTL" default:"10s"`
	OnTimeWindowDays  int           `envconfig:"VENDORHUB_ON_TIME_WINDOW_DAYS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENDORHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VENDORHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"VENDORHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VENDORHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderEventsTopic string `envconfig:"VENDORHUB_PUBSUB_ORDER_EVENTS_TOPIC" default:"vh-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VENDORHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VENDORHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VENDORHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
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
