package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "localmart"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LOCALMART_DB_DSN"
	EnvDBHost = "LOCALMART_DB_HOST"
	EnvDBUser = "LOCALMART_DB_USER"
	EnvDBName = "LOCALMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Orders       OrdersConfig
	Wallet       WalletConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOCALMART_APP_ENV" required:"true"`
	Port         string `envconfig:"LOCALMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCALMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOCALMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOCALMART_DB_DSN"`
	Driver string `envconfig:"LOCALMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOCALMART_DB_HOST"`
	LegacyPort     int    `envconfig:"LOCALMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOCALMART_DB_USER"`
	LegacyPassword string `envconfig:"LOCALMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOCALMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOCALMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOCALMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOCALMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOCALMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCALMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCALMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOCALMART_REDIS_ADDR"`
	Password     string        `envconfig:"LOCALMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOCALMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOCALMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCALMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCALMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCALMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCALMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOCALMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOCALMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LOCALMART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// GatewayConfig holds credentials for the external payment gateway. Callback
// signatures are HMAC-SHA256 over "<gateway_order_ref>|<gateway_payment_ref>"
// keyed with Secret.
type GatewayConfig struct {
	KeyID    string        `envconfig:"LOCALMART_GATEWAY_KEY_ID"`
	Secret   string        `envconfig:"LOCALMART_GATEWAY_SECRET"`
	BaseURL  string        `envconfig:"LOCALMART_GATEWAY_BASE_URL"`
	Currency string        `envconfig:"LOCALMART_GATEWAY_CURRENCY" default:"INR"`
	Timeout  time.Duration `envconfig:"LOCALMART_GATEWAY_TIMEOUT" default:"10s"`
}

type OrdersConfig struct {
	SellerApprovalWindow time.Duration `envconfig:"LOCALMART_ORDERS_APPROVAL_WINDOW" default:"24h"`
	CancellationWindow   time.Duration `envconfig:"LOCALMART_ORDERS_CANCELLATION_WINDOW" default:"6m"`
}

type WalletConfig struct {
	PlatformAccountID string `envconfig:"LOCALMART_WALLET_PLATFORM_ACCOUNT_ID"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LOCALMART_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LOCALMART_OUTBOX_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LOCALMART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"LOCALMART_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"LOCALMART_PUBSUB_NOTIFICATION_TOPIC" default:"lm-notification-events"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOCALMART_AUTO_MIGRATE" default:"false"`
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
