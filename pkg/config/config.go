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
	DB           DBConfig
	Redis        RedisConfig
	Paymob       PaymobConfig
	Checkout     CheckoutConfig
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
	Env          string `envconfig:"MODELBAY_APP_ENV" required:"true"`
	Port         string `envconfig:"MODELBAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MODELBAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MODELBAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MODELBAY_DB_DSN"`
	Driver string `envconfig:"MODELBAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MODELBAY_DB_HOST"`
	LegacyPort     int    `envconfig:"MODELBAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MODELBAY_DB_USER"`
	LegacyPassword string `envconfig:"MODELBAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"MODELBAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"MODELBAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MODELBAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MODELBAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MODELBAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MODELBAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MODELBAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MODELBAY_REDIS_ADDR"`
	Password     string        `envconfig:"MODELBAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MODELBAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MODELBAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MODELBAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MODELBAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MODELBAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MODELBAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PaymobConfig struct {
	BaseURL             string        `envconfig:"MODELBAY_PAYMOB_BASE_URL" default:"https://accept.paymob.com"`
	APIKey              string        `envconfig:"MODELBAY_PAYMOB_API_KEY" required:"true"`
	HMACSecret          string        `envconfig:"MODELBAY_PAYMOB_HMAC_SECRET" required:"true"`
	CardIntegrationID   int64         `envconfig:"MODELBAY_PAYMOB_CARD_INTEGRATION_ID" required:"true"`
	WalletIntegrationID int64         `envconfig:"MODELBAY_PAYMOB_WALLET_INTEGRATION_ID" required:"true"`
	IframeID            string        `envconfig:"MODELBAY_PAYMOB_IFRAME_ID" required:"true"`
	CallbackURL         string        `envconfig:"MODELBAY_PAYMOB_CALLBACK_URL"`
	CallTimeout         time.Duration `envconfig:"MODELBAY_PAYMOB_CALL_TIMEOUT" default:"10s"`
	PaymentKeyTTL       time.Duration `envconfig:"MODELBAY_PAYMOB_PAYMENT_KEY_TTL" default:"1h"`
}

type CheckoutConfig struct {
	Currency       string        `envconfig:"MODELBAY_CHECKOUT_CURRENCY" default:"EGP"`
	WebhookIdemTTL time.Duration `envconfig:"MODELBAY_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MODELBAY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MODELBAY_AUTO_MIGRATE" default:"false"`
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
