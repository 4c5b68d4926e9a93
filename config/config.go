package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Backend   BackendConfig   `yaml:"backend"`
	Stripe    StripeConfig    `yaml:"stripe"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Query     QueryConfig     `yaml:"query"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
	Session   SessionConfig   `yaml:"session"`
	Worker    WorkerConfig    `yaml:"worker"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

// BackendConfig points at the booking REST API.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
	// APIURL overrides the Stripe API host, used against stripe-mock.
	APIURL string `yaml:"api_url"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	CheckoutTopic string   `yaml:"checkout_topic"`
	GroupID       string   `yaml:"group_id"`
}

// QueryConfig controls caching of backend reads.
type QueryConfig struct {
	StaleSeconds int `yaml:"stale_seconds"`
	Retries      int `yaml:"retries"`
}

func (q QueryConfig) StaleTime() time.Duration {
	return time.Duration(q.StaleSeconds) * time.Second
}

type CheckoutConfig struct {
	LockTTLSeconds int `yaml:"lock_ttl_seconds"`
}

func (c CheckoutConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	Secure     bool   `yaml:"secure"`
	Domain     string `yaml:"domain"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

type WorkerConfig struct {
	SweepMinutes        int `yaml:"sweep_minutes"`
	AbandonAfterMinutes int `yaml:"abandon_after_minutes"`
}

type CORSConfig struct {
	AllowOrigins     []string `yaml:"allow_origins"`
	AllowMethods     []string `yaml:"allow_methods"`
	AllowHeaders     []string `yaml:"allow_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeHours      int      `yaml:"max_age_hours"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Production bool   `yaml:"production"`
}

// env holds values that must not live in the YAML file. Empty fields leave
// the file value in place.
type env struct {
	HTTPAddress      string `envconfig:"HTTP_ADDRESS"`
	BackendBaseURL   string `envconfig:"BACKEND_BASE_URL"`
	StripeSecretKey  string `envconfig:"STRIPE_SECRET_KEY"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
	LogProduction    string `envconfig:"LOG_PRODUCTION"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return fmt.Errorf("failed to process env config: %w", err)
	}

	setIfNotEmpty(&c.HTTP.Address, e.HTTPAddress)
	setIfNotEmpty(&c.Backend.BaseURL, e.BackendBaseURL)
	setIfNotEmpty(&c.Stripe.SecretKey, e.StripeSecretKey)
	setIfNotEmpty(&c.Database.Password, e.DatabasePassword)
	setIfNotEmpty(&c.Redis.Password, e.RedisPassword)
	setIfNotEmpty(&c.Log.Level, e.LogLevel)
	if e.LogProduction != "" {
		prod, err := strconv.ParseBool(e.LogProduction)
		if err != nil {
			return fmt.Errorf("invalid LOG_PRODUCTION: %w", err)
		}
		c.Log.Production = prod
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 15
	}
	if c.Query.StaleSeconds == 0 {
		c.Query.StaleSeconds = 300
	}
	if c.Query.Retries == 0 {
		c.Query.Retries = 2
	}
	if c.Checkout.LockTTLSeconds == 0 {
		c.Checkout.LockTTLSeconds = 120
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "travel_session"
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 60
	}
	if c.Kafka.CheckoutTopic == "" {
		c.Kafka.CheckoutTopic = "checkout-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "travelbooking-worker"
	}
	if c.Worker.SweepMinutes == 0 {
		c.Worker.SweepMinutes = 5
	}
	if c.Worker.AbandonAfterMinutes == 0 {
		c.Worker.AbandonAfterMinutes = 30
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
