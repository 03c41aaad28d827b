package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Stripe    StripeConfig
	Catalog   CatalogConfig
	Status    StatusConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds settings for validating bearer tokens issued by the
// identity collaborator
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxHeaderBytes     int
	WebhookMaxBodySize int64
	CORSAllowOrigins   []string
	TrustedProxies     []string
	RateLimitEnabled   bool
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// StripeConfig holds payment processor settings
type StripeConfig struct {
	SecretKey        string
	WebhookSecret    string
	IsTestMode       bool
	Currency         string
	SuccessURL       string
	CancelURL        string
	ShippingFee      int64 // flat worldwide shipping surcharge in minor units
	ShippingLabel    string
	AllowedCountries []string
}

// CatalogConfig holds catalog collaborator settings
type CatalogConfig struct {
	BaseURL  string
	APIKey   string
	ShopID   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// StatusConfig holds status read-model settings
type StatusConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration // documented staleness window for pollers
}

// SchedulerConfig holds delivery reconciliation settings
type SchedulerConfig struct {
	Enabled          bool
	Interval         time.Duration
	AdvanceAfter     time.Duration // minimum age before a grant moves a stage forward
	BatchSize        int
	ActivityLookback time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ARMORY_ prefix (e.g., ARMORY_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ARMORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			IdleTimeout:        v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:     v.GetInt("http.max_header_bytes"),
			WebhookMaxBodySize: v.GetInt64("http.webhook_max_body_size"),
			CORSAllowOrigins:   v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:     v.GetStringSlice("http.trusted_proxies"),
			RateLimitEnabled:   v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:  v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:    v.GetDuration("http.rate_limit_window"),
		},
		Stripe: StripeConfig{
			SecretKey:        v.GetString("stripe.secret_key"),
			WebhookSecret:    v.GetString("stripe.webhook_secret"),
			IsTestMode:       v.GetBool("stripe.is_test_mode"),
			Currency:         v.GetString("stripe.currency"),
			SuccessURL:       v.GetString("stripe.success_url"),
			CancelURL:        v.GetString("stripe.cancel_url"),
			ShippingFee:      v.GetInt64("stripe.shipping_fee"),
			ShippingLabel:    v.GetString("stripe.shipping_label"),
			AllowedCountries: v.GetStringSlice("stripe.allowed_countries"),
		},
		Catalog: CatalogConfig{
			BaseURL:  v.GetString("catalog.base_url"),
			APIKey:   v.GetString("catalog.api_key"),
			ShopID:   v.GetString("catalog.shop_id"),
			Timeout:  v.GetDuration("catalog.timeout"),
			CacheTTL: v.GetDuration("catalog.cache_ttl"),
		},
		Status: StatusConfig{
			CacheEnabled: v.GetBool("status.cache_enabled"),
			CacheTTL:     v.GetDuration("status.cache_ttl"),
		},
		Scheduler: SchedulerConfig{
			Enabled:          v.GetBool("scheduler.enabled"),
			Interval:         v.GetDuration("scheduler.interval"),
			AdvanceAfter:     v.GetDuration("scheduler.advance_after"),
			BatchSize:        v.GetInt("scheduler.batch_size"),
			ActivityLookback: v.GetDuration("scheduler.activity_lookback"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "armory-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "armory"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "armory-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.WebhookMaxBodySize == 0 {
		cfg.HTTP.WebhookMaxBodySize = 64 << 10 // 64KB, Stripe events are small
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 30
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "usd"
	}
	if cfg.Stripe.ShippingFee == 0 {
		cfg.Stripe.ShippingFee = 1400 // $14 flat worldwide shipping
	}
	if cfg.Stripe.ShippingLabel == "" {
		cfg.Stripe.ShippingLabel = "Worldwide Shipping"
	}
	if len(cfg.Stripe.AllowedCountries) == 0 {
		cfg.Stripe.AllowedCountries = []string{"US", "GB", "AU", "CA", "ID", "SG", "MY", "JP", "KR", "PH"}
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = "https://api.printify.com/v1"
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 10 * time.Second
	}
	if cfg.Catalog.CacheTTL == 0 {
		cfg.Catalog.CacheTTL = 5 * time.Minute
	}
	if cfg.Status.CacheTTL == 0 {
		cfg.Status.CacheTTL = 3 * time.Second
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = time.Minute
	}
	if cfg.Scheduler.AdvanceAfter == 0 {
		cfg.Scheduler.AdvanceAfter = 24 * time.Hour
	}
	if cfg.Scheduler.BatchSize == 0 {
		cfg.Scheduler.BatchSize = 100
	}
	if cfg.Scheduler.ActivityLookback == 0 {
		cfg.Scheduler.ActivityLookback = 7 * 24 * time.Hour
	}
}

// validate checks configuration consistency
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Stripe.ShippingFee < 0 {
		return fmt.Errorf("stripe.shipping_fee cannot be negative")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Stripe.SecretKey == "" {
			return fmt.Errorf("stripe.secret_key is required in production")
		}
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
