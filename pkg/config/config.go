package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Pricing       PricingConfig
	Razorpay      RazorpayConfig
	Company       CompanyConfig
	Sendgrid      SendgridConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"RIKSCANDLE_APP_ENV" required:"true"`
	Port         string `envconfig:"RIKSCANDLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RIKSCANDLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RIKSCANDLE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"RIKSCANDLE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RIKSCANDLE_DB_DSN"`
	Driver string `envconfig:"RIKSCANDLE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RIKSCANDLE_DB_HOST"`
	LegacyPort     int    `envconfig:"RIKSCANDLE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RIKSCANDLE_DB_USER"`
	LegacyPassword string `envconfig:"RIKSCANDLE_DB_PASSWORD"`
	LegacyName     string `envconfig:"RIKSCANDLE_DB_NAME"`
	LegacySSLMode  string `envconfig:"RIKSCANDLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RIKSCANDLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RIKSCANDLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RIKSCANDLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RIKSCANDLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"RIKSCANDLE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"RIKSCANDLE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"RIKSCANDLE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RIKSCANDLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RIKSCANDLE_REDIS_ADDR"`
	Password     string        `envconfig:"RIKSCANDLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"RIKSCANDLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RIKSCANDLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RIKSCANDLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RIKSCANDLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RIKSCANDLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RIKSCANDLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RIKSCANDLE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RIKSCANDLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RIKSCANDLE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RIKSCANDLE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RIKSCANDLE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RIKSCANDLE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RIKSCANDLE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RIKSCANDLE_ARGON_KEY_LEN" default:"32"`
}

// PricingConfig drives the totals computation. Amounts are rupees (major
// units); the gateway boundary converts to paise.
type PricingConfig struct {
	ShippingFee       float64 `envconfig:"RIKSCANDLE_SHIPPING_FEE" default:"49"`
	FreeShippingAbove float64 `envconfig:"RIKSCANDLE_FREE_SHIPPING_ABOVE" default:"999"`
	GSTPercent        float64 `envconfig:"RIKSCANDLE_GST_PERCENT" default:"0"`
	DisableGST        bool    `envconfig:"RIKSCANDLE_DISABLE_GST" default:"false"`
}

func (p PricingConfig) ShippingFeeAmount() decimal.Decimal {
	return decimal.NewFromFloat(p.ShippingFee)
}

func (p PricingConfig) FreeShippingThreshold() decimal.Decimal {
	return decimal.NewFromFloat(p.FreeShippingAbove)
}

// TaxPercent returns the effective GST rate, honoring the disable switch.
func (p PricingConfig) TaxPercent() decimal.Decimal {
	if p.DisableGST {
		return decimal.Zero
	}
	return decimal.NewFromFloat(p.GSTPercent)
}

type RazorpayConfig struct {
	KeyID              string        `envconfig:"RIKSCANDLE_RAZORPAY_KEY_ID"`
	KeySecret          string        `envconfig:"RIKSCANDLE_RAZORPAY_KEY_SECRET"`
	WebhookSecret      string        `envconfig:"RIKSCANDLE_RAZORPAY_WEBHOOK_SECRET"`
	Currency           string        `envconfig:"RIKSCANDLE_RAZORPAY_CURRENCY" default:"INR"`
	RequestTimeout     time.Duration `envconfig:"RIKSCANDLE_RAZORPAY_REQUEST_TIMEOUT" default:"10s"`
	WebhookEventTTL    time.Duration `envconfig:"RIKSCANDLE_RAZORPAY_WEBHOOK_EVENT_TTL" default:"720h"`
}

type CompanyConfig struct {
	Name     string `envconfig:"RIKSCANDLE_COMPANY_NAME" default:"RiksCandle"`
	Address  string `envconfig:"RIKSCANDLE_COMPANY_ADDRESS"`
	LogoPath string `envconfig:"RIKSCANDLE_COMPANY_LOGO_PATH"`
}

type SendgridConfig struct {
	APIKey          string `envconfig:"RIKSCANDLE_SENDGRID_API_KEY"`
	DefaultFrom     string `envconfig:"RIKSCANDLE_SENDGRID_FROM_EMAIL"`
	DefaultFromName string `envconfig:"RIKSCANDLE_SENDGRID_FROM_NAME" default:"RiksCandle"`
	DisableEmail    bool   `envconfig:"RIKSCANDLE_DISABLE_EMAIL" default:"false"`
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
