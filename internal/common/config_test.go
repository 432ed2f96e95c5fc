package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"CATALOG_PATH", "FUZZY_THRESHOLD", "PIPELINE_WORKERS", "HTTP_ADDR", "HTTP_READ_TIMEOUT"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()

	assert.Empty(t, cfg.Catalog.Path)
	assert.Equal(t, 0.0, cfg.Catalog.Threshold)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_PATH", "/etc/agroreport/catalog.yaml")
	t.Setenv("FUZZY_THRESHOLD", "0.9")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("HTTP_READ_TIMEOUT", "5s")

	cfg := LoadConfig()
	assert.Equal(t, "/etc/agroreport/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, 0.9, cfg.Catalog.Threshold)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "many")
	t.Setenv("FUZZY_THRESHOLD", "high")

	cfg := LoadConfig()
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 0.0, cfg.Catalog.Threshold)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"threshold above one", func(c *Config) { c.Catalog.Threshold = 1.5 }, true},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
