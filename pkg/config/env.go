package config

const (
	EnvPrefix = "ANTIQUE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv          = "ANTIQUE_APP_ENV"
	EnvPort            = "ANTIQUE_APP_PORT"
	EnvDBDSN           = "ANTIQUE_DB_DSN"
	EnvDBHost          = "ANTIQUE_DB_HOST"
	EnvDBUser          = "ANTIQUE_DB_USER"
	EnvDBName          = "ANTIQUE_DB_NAME"
	EnvDBPassword      = "ANTIQUE_DB_PASSWORD"
	EnvUseSQLite       = "ANTIQUE_USE_SQLITE"
	EnvRedisURL        = "ANTIQUE_REDIS_URL"
	EnvJWTSecret       = "ANTIQUE_JWT_SECRET"
	EnvJWTIssuer       = "ANTIQUE_JWT_ISSUER"
	EnvGCPProjectID    = "ANTIQUE_GCP_PROJECT_ID"
	EnvGCSBucket       = "ANTIQUE_GCS_BUCKET_NAME"
	EnvInvoiceCurrency = "ANTIQUE_INVOICE_CURRENCY"
	EnvLookupLimit     = "ANTIQUE_LOOKUP_RATE_LIMIT"
	EnvTrustedProxies  = "ANTIQUE_TRUSTED_PROXY_HOPS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
