package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, "http://localhost:5173", c.ClientOrigin)
	assert.Equal(t, "sqlite", c.DBType)
	assert.Equal(t, ModeSync, c.AnalysisMode)
	assert.Equal(t, 60*time.Second, c.AnalysisSyncTimeout)
	assert.Equal(t, 5*time.Second, c.AnalysisAsyncTimeout)
	assert.Equal(t, int64(104857600), c.MaxUploadSize)
	assert.Equal(t, StorageLocal, c.StorageBackend)
	require.NoError(t, c.Validate())
}

func TestApplyEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := c.applyEnv(env(map[string]string{
		"PORT":                  "8080",
		"CLIENT_ORIGIN":         "https://app.example.com",
		"DB_TYPE":               "postgres",
		"DATABASE_URL":          "postgres://u:p@db:5432/formcheck",
		"ANALYSIS_URL":          "http://ml:5001",
		"ANALYSIS_MODE":         "async",
		"ANALYSIS_SYNC_TIMEOUT": "45s",
		"RESULTS_DIR":           "/var/lib/formcheck/results",
		"MAX_UPLOAD_SIZE":       "1024",
		"ACCESS_TOKEN_TTL":      "5m",
	}))
	require.NoError(t, err)

	want := Config{}
	want.LoadDefaults()
	want.Port = "8080"
	want.ClientOrigin = "https://app.example.com"
	want.DBType = "postgres"
	want.DatabaseURL = "postgres://u:p@db:5432/formcheck"
	want.AnalysisURL = "http://ml:5001"
	want.AnalysisMode = ModeAsync
	want.AnalysisSyncTimeout = 45 * time.Second
	want.ResultsDir = "/var/lib/formcheck/results"
	want.MaxUploadSize = 1024
	want.AccessTokenTTL = 5 * time.Minute

	assert.Empty(t, cmp.Diff(want, c))
	assert.NoError(t, c.Validate())
	assert.Equal(t, ":8080", c.Addr())
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"bad duration": {"ANALYSIS_SYNC_TIMEOUT": "soon"},
		"bad size":     {"MAX_UPLOAD_SIZE": "big"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			assert.Error(t, c.applyEnv(env(vars)))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown db", func(c *Config) { c.DBType = "mongo" }},
		{"postgres without url", func(c *Config) { c.DBType = "postgres" }},
		{"unknown mode", func(c *Config) { c.AnalysisMode = "batch" }},
		{"s3 without bucket", func(c *Config) { c.StorageBackend = StorageS3 }},
		{"zero timeout", func(c *Config) { c.AnalysisSyncTimeout = 0 }},
		{"empty secret", func(c *Config) { c.AccessTokenSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANALYSIS_MODE", "async")
	t.Setenv("PORT", "9999")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ModeAsync, c.AnalysisMode)
	assert.Equal(t, "9999", c.Port)
}
