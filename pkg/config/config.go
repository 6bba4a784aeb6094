package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Identity providers selectable with AUTH_PROVIDER
const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

type Config struct {
	Port string `env:"PORT" env-default:"8080"`
	Env  string `env:"ENV" env-default:"development"`

	PostgresConnStr string `env:"POSTGRES_CONN_STR"`
	MongoURI        string `env:"MONGO_URI"`
	MongoDatabase   string `env:"MONGO_DATABASE" env-default:"ratings"`
	// RedisURL enables cross-instance live delivery when set
	RedisURL string `env:"REDIS_URL"`

	AuthProvider            string `env:"AUTH_PROVIDER" env-default:"jwt"`
	JWTSecret               string `env:"JWT_SECRET"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH" env-default:"./firebase_credentials.json"`

	// AllowedOrigins governs both CORS and websocket upgrades; "*" allows any origin
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	FanoutConcurrency  int           `env:"FANOUT_CONCURRENCY" env-default:"4"`
	FanoutTimeout      time.Duration `env:"FANOUT_TIMEOUT" env-default:"10s"`
	SubscriptionBuffer int           `env:"SUBSCRIPTION_BUFFER" env-default:"32"`
}

// Load reads .env when present, then the environment, and validates the result.
func Load() (*Config, error) {
	// A missing .env is fine; the variables may come from the environment
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every value the selected setup needs is present and sane.
func (c *Config) Validate() error {
	var errs []error

	if c.PostgresConnStr == "" {
		errs = append(errs, errors.New("POSTGRES_CONN_STR is required"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}

	switch c.AuthProvider {
	case AuthProviderJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_PROVIDER is jwt"))
		}
	case AuthProviderFirebase:
		if c.FirebaseCredentialsPath == "" {
			errs = append(errs, errors.New("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER is firebase"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_PROVIDER must be %q or %q, got %q", AuthProviderJWT, AuthProviderFirebase, c.AuthProvider))
	}

	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGINS must list at least one origin"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.FanoutConcurrency <= 0 {
		errs = append(errs, errors.New("FANOUT_CONCURRENCY must be positive"))
	}
	if c.FanoutTimeout <= 0 {
		errs = append(errs, errors.New("FANOUT_TIMEOUT must be positive"))
	}
	if c.SubscriptionBuffer <= 0 {
		errs = append(errs, errors.New("SUBSCRIPTION_BUFFER must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether ENV selects production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
