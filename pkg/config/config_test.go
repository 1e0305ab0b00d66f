package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s3inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newViper(t *testing.T, content string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if content != "" {
		require.NoError(t, ReadFile(v, writeConfig(t, content), true))
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "us-east-1", cfg.DefaultRegion)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 72*time.Hour, cfg.Lookback)
	assert.Equal(t, 24*time.Hour, cfg.Period)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, "text", cfg.Output)
	assert.Empty(t, cfg.StorageClasses.Classes)
}

func TestLoad_ValidConfigFile(t *testing.T) {
	cfg, err := Load(newViper(t, `region: eu-central-1
default_region: eu-west-1
concurrency: 4
rate_limit: 10
lookback: 96h
period: 12h
output: json
log_level: debug
storage_classes:
  version: "2025-02"
  classes:
    - StandardStorage
    - GlacierStorage
`))
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", cfg.Region)
	assert.Equal(t, "eu-west-1", cfg.DefaultRegion)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 10.0, cfg.RateLimit)
	assert.Equal(t, 96*time.Hour, cfg.Lookback)
	assert.Equal(t, 12*time.Hour, cfg.Period)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "2025-02", cfg.StorageClasses.Version)
	assert.Equal(t, []string{"StandardStorage", "GlacierStorage"}, cfg.StorageClasses.Classes)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"concurrency", "concurrency: 0\n", "concurrency (min=1)"},
		{"output", "output: xml\n", "output (oneof=text json)"},
		{"lookback shorter than period", "lookback: 1h\nperiod: 24h\n", "lookback (gtefield=Period)"},
		{"access key without secret", "access_key: AKIA\n", "secretkey (required_with=AccessKey)"},
		{"duplicate classes", "storage_classes:\n  classes: [StandardStorage, StandardStorage]\n", "storageclasses.classes (unique)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(newViper(t, tt.content))
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	assert.NoError(t, ReadFile(viper.New(), missing, false))
	assert.Error(t, ReadFile(viper.New(), missing, true))
}

func TestBindEnv_LegacyNames(t *testing.T) {
	t.Setenv("S3_REGION", "ap-south-1")
	t.Setenv("S3INV_CONCURRENCY", "6")

	v := newViper(t, "")
	require.NoError(t, BindEnv(v))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", cfg.Region)
	assert.Equal(t, 6, cfg.Concurrency)
}
