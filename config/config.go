package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Provider ProviderConfig `mapstructure:"provider"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Mail     MailConfig     `mapstructure:"mail"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	OpTimeout time.Duration `mapstructure:"op_timeout"` // read/write deadline per command
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ProviderConfig configures the payment provider (Stripe) API and webhook verification.
type ProviderConfig struct {
	SecretKey          string        `mapstructure:"secret_key"`
	WebhookSecret      string        `mapstructure:"webhook_secret"`
	APIURL             string        `mapstructure:"api_url"` // empty = provider default
	SignatureTolerance time.Duration `mapstructure:"signature_tolerance"`
	MaxNetworkRetries  int64         `mapstructure:"max_network_retries"`
}

// LedgerConfig configures the order ledger RPC.
type LedgerConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	SigningSecret string        `mapstructure:"signing_secret"`
	ClientID      string        `mapstructure:"client_id"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds the per-stage deadlines and the attempt lease settings.
type PipelineConfig struct {
	RefetchTimeout    time.Duration `mapstructure:"refetch_timeout"`
	DispatchTimeout   time.Duration `mapstructure:"dispatch_timeout"`
	RunTimeout        time.Duration `mapstructure:"run_timeout"`
	FinalizeTimeout   time.Duration `mapstructure:"finalize_timeout"`
	ConfirmTimeout    time.Duration `mapstructure:"confirm_timeout"`
	LeaseTTL          time.Duration `mapstructure:"lease_ttl"`
	LeasePollInterval time.Duration `mapstructure:"lease_poll_interval"`
	OutcomeCacheTTL   time.Duration `mapstructure:"outcome_cache_ttl"` // 0 disables the cache
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Subject  string `mapstructure:"subject"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PEP_ (Payment Event Pipeline).
// Nested keys use underscore: PEP_DATABASE_HOST, PEP_PROVIDER_WEBHOOK_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "payment_events")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.op_timeout", "250ms")
	v.SetDefault("provider.secret_key", "")
	v.SetDefault("provider.webhook_secret", "")
	v.SetDefault("provider.api_url", "")
	v.SetDefault("provider.signature_tolerance", "5m")
	v.SetDefault("provider.max_network_retries", 0)
	v.SetDefault("ledger.base_url", "")
	v.SetDefault("ledger.signing_secret", "")
	v.SetDefault("ledger.client_id", "payment-event-pipeline")
	v.SetDefault("ledger.timeout", "5s")
	v.SetDefault("pipeline.refetch_timeout", "8s")
	v.SetDefault("pipeline.dispatch_timeout", "8s")
	v.SetDefault("pipeline.run_timeout", "20s")
	v.SetDefault("pipeline.finalize_timeout", "3s")
	v.SetDefault("pipeline.confirm_timeout", "10s")
	v.SetDefault("pipeline.lease_ttl", "30s")
	v.SetDefault("pipeline.lease_poll_interval", "200ms")
	v.SetDefault("pipeline.outcome_cache_ttl", "24h")
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "orders@example.com")
	v.SetDefault("mail.subject", "Your order is confirmed")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "1h")
	v.SetDefault("jwt.issuer", "payment-event-pipeline")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PEP_DATABASE_HOST -> database.host
	v.SetEnvPrefix("PEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate reports every missing deployment-critical value at once.
// The service refuses to start rather than answer webhooks it cannot verify.
func (c *Config) Validate() error {
	var errs []error

	if c.Provider.WebhookSecret == "" {
		errs = append(errs, errors.New("provider.webhook_secret is required"))
	}
	if c.Provider.SecretKey == "" {
		errs = append(errs, errors.New("provider.secret_key is required"))
	}
	if c.Ledger.BaseURL == "" {
		errs = append(errs, errors.New("ledger.base_url is required"))
	}
	if c.Ledger.SigningSecret == "" {
		errs = append(errs, errors.New("ledger.signing_secret is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}

	p := c.Pipeline
	for name, d := range map[string]time.Duration{
		"pipeline.refetch_timeout":     p.RefetchTimeout,
		"pipeline.dispatch_timeout":    p.DispatchTimeout,
		"pipeline.run_timeout":         p.RunTimeout,
		"pipeline.finalize_timeout":    p.FinalizeTimeout,
		"pipeline.lease_ttl":           p.LeaseTTL,
		"pipeline.lease_poll_interval": p.LeasePollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if p.RunTimeout > 0 && p.RunTimeout < p.RefetchTimeout+p.DispatchTimeout {
		errs = append(errs, errors.New("pipeline.run_timeout must cover refetch_timeout + dispatch_timeout"))
	}
	if p.LeaseTTL > 0 && p.LeaseTTL < p.RunTimeout {
		errs = append(errs, errors.New("pipeline.lease_ttl must not be shorter than pipeline.run_timeout"))
	}

	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		errs = append(errs, errors.New("mail.host and mail.from are required when mail is enabled"))
	}

	return errors.Join(errs...)
}
