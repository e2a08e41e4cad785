package config

const (
	EnvPrefix = "RETAILPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv         = "RETAILPOS_APP_ENV"
	EnvPort           = "RETAILPOS_APP_PORT"
	EnvLogLevel       = "RETAILPOS_LOG_LEVEL"
	EnvCurrencySymbol = "RETAILPOS_CURRENCY_SYMBOL"

	EnvDBDSN    = "RETAILPOS_DB_DSN"
	EnvDBDriver = "RETAILPOS_DB_DRIVER"
	EnvDBHost   = "RETAILPOS_DB_HOST"
	EnvDBUser   = "RETAILPOS_DB_USER"
	EnvDBName   = "RETAILPOS_DB_NAME"
	EnvDBPort   = "RETAILPOS_DB_PORT"

	EnvRedisURL = "RETAILPOS_REDIS_URL"

	EnvJWTSecret  = "RETAILPOS_JWT_SECRET"
	EnvJWTIssuer  = "RETAILPOS_JWT_ISSUER"
	EnvJWTExpMins = "RETAILPOS_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite = "RETAILPOS_USE_SQLITE"

	EnvGCPProjectID       = "RETAILPOS_GCP_PROJECT_ID"
	EnvPubSubCommerce     = "RETAILPOS_PUBSUB_COMMERCE_TOPIC"
	EnvPubSubNotification = "RETAILPOS_PUBSUB_NOTIFICATION_SUBSCRIPTION"

	EnvVoucherCodeAttempts = "RETAILPOS_VOUCHER_CODE_ATTEMPTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
