package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port        string
	Env         string
	ServiceName string
	LogLevel    string
	LogFile     string

	Store              string
	MongoURL           string
	MongoDatabase      string
	MongoTransactions  bool
	StoreTimeout       time.Duration
	ProviderTimeout    time.Duration
	ShutdownTimeout    time.Duration
	JWTSecret          string
	JWTExpiresIn       time.Duration
	StripeSecretKey    string
	PaymentCurrency    string
	InventoryManagers  []string
	DeliveryPersons    []string
	CORSAllowedOrigins []string
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }
func (c *Config) IsProduction() bool  { return c.Env == EnvProduction }

var keys = []string{
	"PORT", "APP_ENV", "SERVICE_NAME", "LOG_LEVEL", "LOG_FILE",
	"STORE", "MONGODB_URL", "MONGODB_DATABASE", "MONGODB_TRANSACTIONS",
	"STORE_TIMEOUT", "PROVIDER_TIMEOUT", "SHUTDOWN_TIMEOUT",
	"JWT_SECRET", "JWT_EXPIRES_IN",
	"STRIPE_SECRET_KEY", "PAYMENT_CURRENCY",
	"INVENTORY_MANAGER_EMAILS", "DELIVERY_PERSON_EMAILS",
	"CORS_ALLOWED_ORIGINS",
}

// Load reads .env.local and .env (when present, without overriding the real
// environment) and resolves the configuration from environment variables.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", EnvProduction)
	v.SetDefault("SERVICE_NAME", "minishop")
	v.SetDefault("STORE", StoreMongo)
	v.SetDefault("MONGODB_DATABASE", "minishop")
	v.SetDefault("MONGODB_TRANSACTIONS", false)
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("PROVIDER_TIMEOUT", "10s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("JWT_EXPIRES_IN", "90d")
	v.SetDefault("PAYMENT_CURRENCY", "lkr")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	return v
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		Env:                strings.ToLower(v.GetString("APP_ENV")),
		ServiceName:        v.GetString("SERVICE_NAME"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFile:            v.GetString("LOG_FILE"),
		Store:              strings.ToLower(v.GetString("STORE")),
		MongoURL:           v.GetString("MONGODB_URL"),
		MongoDatabase:      v.GetString("MONGODB_DATABASE"),
		MongoTransactions:  v.GetBool("MONGODB_TRANSACTIONS"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		StripeSecretKey:    v.GetString("STRIPE_SECRET_KEY"),
		PaymentCurrency:    strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
		InventoryManagers:  splitList(v.GetString("INVENTORY_MANAGER_EMAILS"), true),
		DeliveryPersons:    splitList(v.GetString("DELIVERY_PERSON_EMAILS"), true),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS"), false),
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"STORE_TIMEOUT", &cfg.StoreTimeout},
		{"PROVIDER_TIMEOUT", &cfg.ProviderTimeout},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"JWT_EXPIRES_IN", &cfg.JWTExpiresIn},
	}
	for _, d := range durations {
		if *d.dst, err = ParseDuration(v.GetString(d.key)); err != nil {
			return nil, fmt.Errorf("config: %s: %w", d.key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("config: JWT_SECRET is required"))
	}
	switch c.Store {
	case StoreMongo:
		if c.MongoURL == "" {
			errs = append(errs, errors.New("config: MONGODB_URL is required when STORE=mongo"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE %q", c.Store))
	}
	if c.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("config: JWT_EXPIRES_IN must be positive"))
	}
	return errors.Join(errs...)
}

// ParseDuration accepts Go durations ("90m", "12h") and whole days ("90d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}
