package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret    string
	JWTExpiry    time.Duration
	JWTMaxAge    time.Duration
	ReauthMaxAge time.Duration
	CookieSecure bool

	RequestTimeout time.Duration

	StorageDir               string
	StorageBaseURL           string
	StorageProtectedPrefixes []string
}

// ErrMissingJWTSecret is returned when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=qrmenu port=5432 sslmode=disable")
	v.SetDefault("JWT_EXPIRY", "1h")
	v.SetDefault("JWT_MAX_AGE", "12h")
	v.SetDefault("REAUTH_MAX_AGE", "15m")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("STORAGE_BASE_URL", "/uploads")
	v.SetDefault("STORAGE_PROTECTED_PREFIXES", "system/,defaults/,static/")
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
// A missing JWT secret is a fatal startup condition.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTExpiry:      v.GetDuration("JWT_EXPIRY"),
		JWTMaxAge:      v.GetDuration("JWT_MAX_AGE"),
		ReauthMaxAge:   v.GetDuration("REAUTH_MAX_AGE"),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		StorageDir:     v.GetString("STORAGE_DIR"),
		StorageBaseURL: strings.TrimRight(v.GetString("STORAGE_BASE_URL"), "/"),
	}
	for _, p := range strings.Split(v.GetString("STORAGE_PROTECTED_PREFIXES"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.StorageProtectedPrefixes = append(cfg.StorageProtectedPrefixes, p)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.JWTExpiry <= 0 {
		return nil, errors.New("JWT_EXPIRY must be positive")
	}
	if cfg.JWTMaxAge <= 0 {
		cfg.JWTMaxAge = cfg.JWTExpiry
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoadDatabase reads only the database settings, for tools that never sign
// tokens and so do not need JWT_SECRET.
func LoadDatabase() (driver, dsn string) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return strings.ToLower(v.GetString("DATABASE_DRIVER")), v.GetString("DATABASE_DSN")
}
