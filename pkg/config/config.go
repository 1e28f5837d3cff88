package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Telegram  TelegramConfig
	Operators OperatorsConfig
	Payment   PaymentConfig
	Catalog   CatalogConfig
	Orders    OrdersConfig
	Sheets    SheetsConfig
	DB        DBConfig
	Redis     RedisConfig
	Session   SessionConfig
	Checkout  CheckoutConfig
	Dedup     DedupConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	for _, field := range []*string{&c.Telegram.Mode, &c.Catalog.Source, &c.Orders.Store, &c.Session.Backend, &c.Dedup.Backend} {
		*field = strings.ToLower(strings.TrimSpace(*field))
	}
}

func (c *Config) validate() error {
	if !oneOf(c.Telegram.Mode, TelegramModePolling, TelegramModeWebhook) {
		return fmt.Errorf("%s must be %q or %q", EnvTelegramMode, TelegramModePolling, TelegramModeWebhook)
	}
	if !oneOf(c.Catalog.Source, BackendSheets, BackendDB) {
		return fmt.Errorf("%s must be %q or %q", EnvCatalogSource, BackendSheets, BackendDB)
	}
	if !oneOf(c.Orders.Store, BackendSheets, BackendDB) {
		return fmt.Errorf("%s must be %q or %q", EnvOrderStore, BackendSheets, BackendDB)
	}
	if !oneOf(c.Session.Backend, SessionBackendMemory, SessionBackendRedis) {
		return fmt.Errorf("%s must be %q or %q", EnvSessionBackend, SessionBackendMemory, SessionBackendRedis)
	}
	if !oneOf(c.Dedup.Backend, SessionBackendMemory, SessionBackendRedis) {
		return fmt.Errorf("%s must be %q or %q", EnvDedupBackend, SessionBackendMemory, SessionBackendRedis)
	}
	if c.UsesSheets() && strings.TrimSpace(c.Sheets.SpreadsheetID) == "" {
		return fmt.Errorf("%s is required when the catalog or orders use sheets", EnvSheetID)
	}
	if c.UsesDB() && strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("%s is required when the catalog or orders use the database", EnvDBDSN)
	}
	if c.UsesRedis() && c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("either %s or %s is required for redis sessions or dedup", EnvRedisURL, EnvRedisAddr)
	}
	return nil
}

// UsesSheets reports whether any component is backed by the spreadsheet.
func (c *Config) UsesSheets() bool {
	return c.Catalog.Source == BackendSheets || c.Orders.Store == BackendSheets
}

// UsesDB reports whether any component is backed by the SQL database.
func (c *Config) UsesDB() bool {
	return c.Catalog.Source == BackendDB || c.Orders.Store == BackendDB
}

// UsesRedis reports whether sessions or update de-duplication need redis.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == SessionBackendRedis || c.DedupUsesRedis()
}

// DedupUsesRedis reports whether update de-duplication is shared through redis.
func (c *Config) DedupUsesRedis() bool {
	return c.Dedup.Enabled && c.Dedup.Backend == SessionBackendRedis
}

type AppConfig struct {
	Env          string `envconfig:"SHOPBOT_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPBOT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPBOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPBOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type TelegramConfig struct {
	BotToken      string        `envconfig:"SHOPBOT_TELEGRAM_BOT_TOKEN" required:"true"`
	Mode          string        `envconfig:"SHOPBOT_TELEGRAM_MODE" default:"polling"`
	WebhookSecret string        `envconfig:"SHOPBOT_TELEGRAM_WEBHOOK_SECRET"`
	PollTimeout   time.Duration `envconfig:"SHOPBOT_TELEGRAM_POLL_TIMEOUT" default:"60s"`
	Debug         bool          `envconfig:"SHOPBOT_TELEGRAM_DEBUG" default:"false"`
}

// Secret returns the webhook path secret, falling back to the bot token.
func (t TelegramConfig) Secret() string {
	if s := strings.TrimSpace(t.WebhookSecret); s != "" {
		return s
	}
	return t.BotToken
}

type OperatorsConfig struct {
	Admins        string `envconfig:"SHOPBOT_ADMINS"`
	AdminUsername string `envconfig:"SHOPBOT_ADMIN_USERNAME"`
	SupportURL    string `envconfig:"SHOPBOT_SUPPORT_URL"`
}

// IDs parses the comma-separated operator identities, skipping blanks and non-numeric entries.
func (o OperatorsConfig) IDs() []int64 {
	ids := []int64{}
	for _, part := range strings.Split(o.Admins, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Username returns the operator handle without a leading @.
func (o OperatorsConfig) Username() string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(o.AdminUsername), "@"))
}

type PaymentConfig struct {
	PayPalMe string `envconfig:"SHOPBOT_PAYPAL_ME"`
}

// Handle returns the PayPal.me handle stripped of any URL prefix.
func (p PaymentConfig) Handle() string {
	h := strings.TrimSpace(p.PayPalMe)
	for _, prefix := range []string{"https://www.paypal.me/", "https://paypal.me/", "www.paypal.me/", "paypal.me/"} {
		h = strings.TrimPrefix(h, prefix)
	}
	return strings.Trim(h, "/")
}

type CatalogConfig struct {
	Source   string        `envconfig:"SHOPBOT_CATALOG_SOURCE" default:"sheets"`
	TTL      time.Duration `envconfig:"SHOPBOT_CATALOG_TTL" default:"5s"`
	PageSize int           `envconfig:"SHOPBOT_CATALOG_PAGE_SIZE" default:"4"`
}

type OrdersConfig struct {
	Store string `envconfig:"SHOPBOT_ORDER_STORE" default:"sheets"`
}

type SheetsConfig struct {
	SpreadsheetID          string `envconfig:"SHOPBOT_SHEET_ID"`
	ProductsTab            string `envconfig:"SHOPBOT_PRODUCTS_TAB" default:"Products"`
	OrdersTab              string `envconfig:"SHOPBOT_ORDERS_TAB" default:"Orders"`
	CredentialsJSON        string `envconfig:"SHOPBOT_GOOGLE_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHOPBOT_GOOGLE_APPLICATION_CREDENTIALS" default:"service_account.json"`
}

type DBConfig struct {
	DSN         string `envconfig:"SHOPBOT_DB_DSN"`
	Driver      string `envconfig:"SHOPBOT_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"SHOPBOT_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"SHOPBOT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SHOPBOT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPBOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPBOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPBOT_REDIS_URL"`
	Address      string        `envconfig:"SHOPBOT_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPBOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPBOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPBOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPBOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPBOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPBOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPBOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	Backend string        `envconfig:"SHOPBOT_SESSION_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"SHOPBOT_SESSION_TTL" default:"720h"`
}

type CheckoutConfig struct {
	CancelOnBrowse bool `envconfig:"SHOPBOT_CHECKOUT_CANCEL_ON_BROWSE" default:"false"`
}

type DedupConfig struct {
	Enabled bool          `envconfig:"SHOPBOT_DEDUP_ENABLED" default:"false"`
	Backend string        `envconfig:"SHOPBOT_DEDUP_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"SHOPBOT_DEDUP_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SHOPBOT_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"SHOPBOT_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether order events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.OrdersTopic) != ""
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
