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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Vouchers     VoucherConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string   `envconfig:"RETAILPOS_APP_ENV" required:"true"`
	Port           string   `envconfig:"RETAILPOS_APP_PORT" required:"true"`
	LogLevel       string   `envconfig:"RETAILPOS_LOG_LEVEL" default:"info"`
	LogWarnStack   bool     `envconfig:"RETAILPOS_LOG_WARN_STACK" default:"false"`
	CurrencySymbol string   `envconfig:"RETAILPOS_CURRENCY_SYMBOL" default:"€"`
	CORSOrigins    []string `envconfig:"RETAILPOS_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"RETAILPOS_SERVICE_KIND" default:"api"`
	// MetricsAddr, when set, makes background workers serve /metrics on it.
	MetricsAddr string `envconfig:"RETAILPOS_METRICS_ADDR"`
}

type DBConfig struct {
	DSN    string `envconfig:"RETAILPOS_DB_DSN"`
	Driver string `envconfig:"RETAILPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RETAILPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"RETAILPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RETAILPOS_DB_USER"`
	LegacyPassword string `envconfig:"RETAILPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"RETAILPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"RETAILPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RETAILPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RETAILPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RETAILPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RETAILPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RETAILPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RETAILPOS_REDIS_ADDR"`
	Password     string        `envconfig:"RETAILPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RETAILPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RETAILPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RETAILPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RETAILPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RETAILPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RETAILPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the tokens issued by the external session service.
// The engine only verifies them; ExpirationMinutes is used by posctl when
// minting development tokens.
type JWTConfig struct {
	Secret            string `envconfig:"RETAILPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RETAILPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RETAILPOS_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type RateLimitConfig struct {
	RedeemWindow time.Duration `envconfig:"RETAILPOS_RATE_LIMIT_REDEEM_WINDOW" default:"1m"`
	RedeemLimit  int           `envconfig:"RETAILPOS_RATE_LIMIT_REDEEM_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RETAILPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RETAILPOS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"RETAILPOS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RETAILPOS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RETAILPOS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RETAILPOS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	CommerceTopic            string `envconfig:"RETAILPOS_PUBSUB_COMMERCE_TOPIC" default:"rp-commerce-events"`
	NotificationSubscription string `envconfig:"RETAILPOS_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"rp-commerce-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RETAILPOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RETAILPOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RETAILPOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type VoucherConfig struct {
	CodeAttempts int `envconfig:"RETAILPOS_VOUCHER_CODE_ATTEMPTS" default:"3"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"RETAILPOS_CRON_INTERVAL" default:"24h"`
	OutboxRetentionDays int           `envconfig:"RETAILPOS_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	NotificationDays    int           `envconfig:"RETAILPOS_CRON_NOTIFICATION_RETENTION_DAYS" default:"90"`
	LockTTL             time.Duration `envconfig:"RETAILPOS_CRON_LOCK_TTL" default:"1h"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite || strings.EqualFold(db.Driver, DriverSQLite) {
		db.DSN = "file:retailpos.db?cache=shared"
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
