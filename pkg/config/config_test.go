package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:               "8080",
		PostgresConnStr:    "host=localhost",
		MongoURI:           "mongodb://localhost:27017",
		AuthProvider:       AuthProviderJWT,
		JWTSecret:          "secret",
		LogLevel:           "info",
		LogFormat:          "text",
		FanoutConcurrency:  4,
		FanoutTimeout:      10 * time.Second,
		SubscriptionBuffer: 32,
		AllowedOrigins:     []string{"*"},
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "host=db user=app")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("FANOUT_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("AUTH_PROVIDER", AuthProviderJWT)
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ratings", cfg.MongoDatabase)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
	assert.Equal(t, 3*time.Second, cfg.FanoutTimeout)
	assert.Equal(t, 4, cfg.FanoutConcurrency)
	assert.Equal(t, 32, cfg.SubscriptionBuffer)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadAllowedOriginsAndEnv(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "host=db")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUTH_PROVIDER", AuthProviderJWT)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example,https://admin.example")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "host=db")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTH_PROVIDER", AuthProviderJWT)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid jwt", func(*Config) {}, ""},
		{"valid firebase", func(c *Config) {
			c.AuthProvider = AuthProviderFirebase
			c.JWTSecret = ""
			c.FirebaseCredentialsPath = "./creds.json"
		}, ""},
		{"firebase without credentials", func(c *Config) {
			c.AuthProvider = AuthProviderFirebase
		}, "FIREBASE_CREDENTIALS_PATH"},
		{"unknown provider", func(c *Config) { c.AuthProvider = "saml" }, "AUTH_PROVIDER"},
		{"missing postgres", func(c *Config) { c.PostgresConnStr = "" }, "POSTGRES_CONN_STR"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"zero concurrency", func(c *Config) { c.FanoutConcurrency = 0 }, "FANOUT_CONCURRENCY"},
		{"zero buffer", func(c *Config) { c.SubscriptionBuffer = 0 }, "SUBSCRIPTION_BUFFER"},
		{"no origins", func(c *Config) { c.AllowedOrigins = nil }, "ALLOWED_ORIGINS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	logger := NewLogger(&cfg)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogLevel = "loud"
	cfg.LogFormat = "text"
	logger = NewLogger(&cfg)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
