package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "RIKSCANDLE_APP_ENV"
	EnvPort     = "RIKSCANDLE_APP_PORT"
	EnvDBDSN    = "RIKSCANDLE_DB_DSN"
	EnvDBHost   = "RIKSCANDLE_DB_HOST"
	EnvDBUser   = "RIKSCANDLE_DB_USER"
	EnvDBName   = "RIKSCANDLE_DB_NAME"
	EnvRedisURL = "RIKSCANDLE_REDIS_URL"

	EnvJWTSecret  = "RIKSCANDLE_JWT_SECRET"
	EnvJWTIssuer  = "RIKSCANDLE_JWT_ISSUER"
	EnvJWTExpMins = "RIKSCANDLE_JWT_EXPIRATION_MINUTES"

	EnvRazorpayKeyID         = "RIKSCANDLE_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret     = "RIKSCANDLE_RAZORPAY_KEY_SECRET"
	EnvRazorpayWebhookSecret = "RIKSCANDLE_RAZORPAY_WEBHOOK_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
