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
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Assets       AssetsConfig
	Invoice      InvoiceConfig
	Lookup       LookupConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = cfg.FeatureFlags.SQLitePath
		}
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"ANTIQUE_APP_ENV" required:"true"`
	Port            string        `envconfig:"ANTIQUE_APP_PORT" required:"true"`
	LogLevel        string        `envconfig:"ANTIQUE_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"ANTIQUE_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"ANTIQUE_LOG_WARN_STACK" default:"false"`
	CORSOrigins     []string      `envconfig:"ANTIQUE_CORS_ORIGINS" default:"http://localhost:3000"`
	ReadTimeout     time.Duration `envconfig:"ANTIQUE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"ANTIQUE_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"ANTIQUE_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ANTIQUE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ANTIQUE_DB_DSN"`
	Driver string `envconfig:"ANTIQUE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ANTIQUE_DB_HOST"`
	LegacyPort     int    `envconfig:"ANTIQUE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ANTIQUE_DB_USER"`
	LegacyPassword string `envconfig:"ANTIQUE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ANTIQUE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ANTIQUE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ANTIQUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ANTIQUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ANTIQUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ANTIQUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ANTIQUE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ANTIQUE_REDIS_ADDR"`
	Password     string        `envconfig:"ANTIQUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ANTIQUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ANTIQUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ANTIQUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ANTIQUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ANTIQUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ANTIQUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ANTIQUE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ANTIQUE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ANTIQUE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"ANTIQUE_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"ANTIQUE_SQLITE_PATH" default:"antique-store.db"`
	AutoMigrate bool   `envconfig:"ANTIQUE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ANTIQUE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ANTIQUE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ANTIQUE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string        `envconfig:"ANTIQUE_GCS_BUCKET_NAME" required:"true"`
	Endpoint      string        `envconfig:"ANTIQUE_GCS_ENDPOINT" default:"https://storage.googleapis.com"`
	PublicBaseURL string        `envconfig:"ANTIQUE_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	Anonymous     bool          `envconfig:"ANTIQUE_GCS_ANONYMOUS" default:"false"`
	Timeout       time.Duration `envconfig:"ANTIQUE_GCS_TIMEOUT" default:"30s"`
}

type AssetsConfig struct {
	MaxUploadMB int `envconfig:"ANTIQUE_ASSETS_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (a AssetsConfig) MaxUploadBytes() int64 {
	if a.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(a.MaxUploadMB) << 20
}

type InvoiceConfig struct {
	StoreName    string `envconfig:"ANTIQUE_INVOICE_STORE_NAME" default:"Antique Store"`
	StoreAddress string `envconfig:"ANTIQUE_INVOICE_STORE_ADDRESS"`
	StorePhone   string `envconfig:"ANTIQUE_INVOICE_STORE_PHONE"`
	StoreEmail   string `envconfig:"ANTIQUE_INVOICE_STORE_EMAIL"`
	Locale       string `envconfig:"ANTIQUE_INVOICE_LOCALE" default:"en-US"`
	Currency     string `envconfig:"ANTIQUE_INVOICE_CURRENCY" default:"USD"`
	DateLayout   string `envconfig:"ANTIQUE_INVOICE_DATE_LAYOUT" default:"02/01/2006"`
}

type LookupConfig struct {
	Window time.Duration `envconfig:"ANTIQUE_LOOKUP_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"ANTIQUE_LOOKUP_RATE_LIMIT" default:"30"`
	// TrustedProxyHops is the number of proxies in front of the API that
	// append to X-Forwarded-For. Zero keys the limit on the peer address.
	TrustedProxyHops int `envconfig:"ANTIQUE_TRUSTED_PROXY_HOPS" default:"0"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ANTIQUE_CRON_INTERVAL" default:"1h"`
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
