package config

const EnvPrefix = "SHOPBOT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	TelegramModePolling = "polling"
	TelegramModeWebhook = "webhook"

	BackendSheets = "sheets"
	BackendDB     = "db"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv            = "SHOPBOT_APP_ENV"
	EnvPort              = "SHOPBOT_APP_PORT"
	EnvLogLevel          = "SHOPBOT_LOG_LEVEL"
	EnvTelegramBotToken  = "SHOPBOT_TELEGRAM_BOT_TOKEN"
	EnvTelegramMode      = "SHOPBOT_TELEGRAM_MODE"
	EnvTelegramSecret    = "SHOPBOT_TELEGRAM_WEBHOOK_SECRET"
	EnvAdmins            = "SHOPBOT_ADMINS"
	EnvAdminUsername     = "SHOPBOT_ADMIN_USERNAME"
	EnvSupportURL        = "SHOPBOT_SUPPORT_URL"
	EnvPayPalMe          = "SHOPBOT_PAYPAL_ME"
	EnvCatalogSource     = "SHOPBOT_CATALOG_SOURCE"
	EnvCatalogTTL        = "SHOPBOT_CATALOG_TTL"
	EnvOrderStore        = "SHOPBOT_ORDER_STORE"
	EnvSheetID           = "SHOPBOT_SHEET_ID"
	EnvDBDSN             = "SHOPBOT_DB_DSN"
	EnvDBDriver          = "SHOPBOT_DB_DRIVER"
	EnvRedisURL          = "SHOPBOT_REDIS_URL"
	EnvRedisAddr         = "SHOPBOT_REDIS_ADDR"
	EnvSessionBackend    = "SHOPBOT_SESSION_BACKEND"
	EnvCancelOnBrowse    = "SHOPBOT_CHECKOUT_CANCEL_ON_BROWSE"
	EnvDedupEnabled      = "SHOPBOT_DEDUP_ENABLED"
	EnvDedupBackend      = "SHOPBOT_DEDUP_BACKEND"
	EnvPubSubOrdersTopic = "SHOPBOT_PUBSUB_ORDERS_TOPIC"
)
