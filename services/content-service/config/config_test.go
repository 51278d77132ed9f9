package config

import (
	"testing"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingConfigFile = "content-service-test-missing"

func clearWordPressEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WORDPRESS_API_URL", "")
	t.Setenv("NEXT_PUBLIC_WORDPRESS_API_URL", "")
	t.Setenv("CACHE_DRIVER", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearWordPressEnv(t)
	t.Setenv("WORDPRESS_API_URL", "https://cms.example.com/")

	cfg, err := Load(missingConfigFile)
	require.NoError(t, err)

	assert.Equal(t, "content-service", cfg.AppName)
	assert.Equal(t, 10*time.Second, cfg.WordPress.Timeout)
	assert.Equal(t, 100, cfg.WordPress.ListPageSize)
	assert.Equal(t, 50, cfg.WordPress.SearchPageSize)
	assert.Equal(t, 1000, cfg.WordPress.SlugBound)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "content-events", cfg.Kafka.ContentTopic)
	assert.Equal(t, "page-revalidate", cfg.Kafka.RevalidateTopic)
	assert.Equal(t, "affiliate-clicks", cfg.Kafka.ClickTopic)
	assert.Equal(t, "https://cms.example.com/graphql", cfg.WordPress.Endpoint())
}

func TestLoad_FallbackEnvName(t *testing.T) {
	clearWordPressEnv(t)
	t.Setenv("NEXT_PUBLIC_WORDPRESS_API_URL", "http://localhost:8000")

	cfg, err := Load(missingConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/graphql", cfg.WordPress.Endpoint())
}

func TestLoad_MissingBaseURL(t *testing.T) {
	clearWordPressEnv(t)

	cfg, err := Load(missingConfigFile)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestLoad_UnknownCacheDriver(t *testing.T) {
	clearWordPressEnv(t)
	t.Setenv("WORDPRESS_API_URL", "https://cms.example.com")
	t.Setenv("CACHE_DRIVER", "memcached")

	_, err := Load(missingConfigFile)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestWordPressConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *WordPressConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *WordPressConfig) {}},
		{name: "empty", mutate: func(c *WordPressConfig) { c.BaseURL = "  " }, wantErr: true},
		{name: "relative", mutate: func(c *WordPressConfig) { c.BaseURL = "/wp" }, wantErr: true},
		{name: "ftp scheme", mutate: func(c *WordPressConfig) { c.BaseURL = "ftp://cms.example.com" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *WordPressConfig) { c.Timeout = 0 }, wantErr: true},
		{name: "client id without token url", mutate: func(c *WordPressConfig) { c.Auth.ClientID = "svc" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WordPressConfig{BaseURL: "https://cms.example.com", Timeout: time.Second}
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_ValidateWorker(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		kafka   bool
		wantErr bool
	}{
		{name: "shared redis", driver: "redis", kafka: true},
		{name: "no cache", driver: "none", kafka: true},
		{name: "process memory cannot be flushed remotely", driver: "memory", kafka: true, wantErr: true},
		{name: "kafka disabled", driver: "redis", kafka: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Cache.Driver = tt.driver
			cfg.Kafka.Enabled = tt.kafka

			err := cfg.ValidateWorker()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}
