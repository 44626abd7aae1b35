package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "password")
	t.Setenv("DB_NAME", "skillbridge")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "")
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "")
		t.Setenv("CERTIFICATE_DEDUPE", "")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 100, cfg.Server.RateLimitPerMinute)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 168*time.Hour, cfg.JWT.AccessTokenExpiry)
		assert.False(t, cfg.Certificates.Dedupe)
		assert.Equal(t, "root:password@tcp(localhost:3306)/skillbridge?parseTime=true&charset=utf8mb4", cfg.DSN())
	})

	t.Run("custom values", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
		t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "2h")
		t.Setenv("CERTIFICATE_DEDUPE", "true")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "20")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 20, cfg.Server.RateLimitPerMinute)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpiry)
		assert.True(t, cfg.Certificates.Dedupe)
	})

	tests := []struct {
		name          string
		key           string
		value         string
		errorContains string
	}{
		{"missing DB_HOST", "DB_HOST", "", "DB_HOST is required"},
		{"invalid DB_PORT", "DB_PORT", "abc", "invalid DB_PORT"},
		{"missing JWT_SECRET", "JWT_SECRET", "", "JWT_SECRET is required"},
		{"invalid expiry", "JWT_ACCESS_TOKEN_EXPIRY", "forever", "invalid JWT_ACCESS_TOKEN_EXPIRY"},
		{"invalid dedupe flag", "CERTIFICATE_DEDUPE", "maybe", "invalid CERTIFICATE_DEDUPE"},
		{"invalid rate limit", "RATE_LIMIT_PER_MINUTE", "0", "invalid RATE_LIMIT_PER_MINUTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDSN_Empty(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "", cfg.DSN())
}
