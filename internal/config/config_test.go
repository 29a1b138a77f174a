package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_TTL_MINUTES", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_ENABLED", "FALSE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "default secret in production",
			mutate:  func(c *Config) { c.Environment = "production"; c.Database.Password = "pw" },
			wantErr: "JWT secret",
		},
		{
			name: "memory driver in production",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWT.SecretKey = "s3cr3t"
				c.Database.Driver = "memory"
			},
			wantErr: "memory database driver",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mongo" },
			wantErr: "unsupported database driver",
		},
		{
			name:    "non-positive ttl",
			mutate:  func(c *Config) { c.JWT.AccessTokenTTL = 0 },
			wantErr: "TTL",
		},
		{
			name:   "valid development config",
			mutate: func(c *Config) {},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Environment: "development",
				Database:    DatabaseConfig{Driver: "postgres"},
				JWT:         JWTConfig{SecretKey: defaultJWTSecret, AccessTokenTTL: 60},
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
