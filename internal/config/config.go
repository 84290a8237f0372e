// Package config builds the server configuration from defaults, an optional
// .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeSync  = "sync"
	ModeAsync = "async"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Port         string
	ClientOrigin string

	DBType      string
	DatabaseURL string
	DBPath      string

	UploadDir      string
	MaxUploadSize  int64
	StorageBackend string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string

	AnalysisURL          string
	AnalysisMode         string
	AnalysisSyncTimeout  time.Duration
	AnalysisAsyncTimeout time.Duration
	ResultsDir           string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// LoadDefaults populates c with development defaults. The token secrets are
// not safe for production.
func (c *Config) LoadDefaults() {
	c.Port = "5000"
	c.ClientOrigin = "http://localhost:5173"

	c.DBType = "sqlite"
	c.DBPath = "./formcheck.db"

	c.UploadDir = "./uploads"
	c.MaxUploadSize = 100 << 20
	c.StorageBackend = StorageLocal
	c.S3Region = "us-east-1"

	c.AnalysisURL = "http://localhost:5001"
	c.AnalysisMode = ModeSync
	c.AnalysisSyncTimeout = 60 * time.Second
	c.AnalysisAsyncTimeout = 5 * time.Second
	c.ResultsDir = "./results"

	c.AccessTokenSecret = "access-secret-change-me"
	c.RefreshTokenSecret = "refresh-secret-change-me"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 7 * 24 * time.Hour

	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ShutdownTimeout = 30 * time.Second
}

// Load applies defaults, then the .env file in the working directory if
// there is one, then the environment. The result is validated.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("PORT", &c.Port)
	str("CLIENT_ORIGIN", &c.ClientOrigin)
	str("DB_TYPE", &c.DBType)
	str("DATABASE_URL", &c.DatabaseURL)
	str("DB_PATH", &c.DBPath)
	str("UPLOAD_DIR", &c.UploadDir)
	str("STORAGE_BACKEND", &c.StorageBackend)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_ENDPOINT", &c.S3Endpoint)
	str("S3_ACCESS_KEY", &c.S3AccessKey)
	str("S3_SECRET_KEY", &c.S3SecretKey)
	str("ANALYSIS_URL", &c.AnalysisURL)
	str("ANALYSIS_MODE", &c.AnalysisMode)
	str("RESULTS_DIR", &c.ResultsDir)
	str("ACCESS_TOKEN_SECRET", &c.AccessTokenSecret)
	str("REFRESH_TOKEN_SECRET", &c.RefreshTokenSecret)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v := strings.TrimSpace(getenv("MAX_UPLOAD_SIZE")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
		}
		c.MaxUploadSize = n
	}

	for key, dst := range map[string]*time.Duration{
		"ANALYSIS_SYNC_TIMEOUT":  &c.AnalysisSyncTimeout,
		"ANALYSIS_ASYNC_TIMEOUT": &c.AnalysisAsyncTimeout,
		"ACCESS_TOKEN_TTL":       &c.AccessTokenTTL,
		"REFRESH_TOKEN_TTL":      &c.RefreshTokenTTL,
		"SHUTDOWN_TIMEOUT":       &c.ShutdownTimeout,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}

	switch c.AnalysisMode {
	case ModeSync, ModeAsync:
	default:
		return fmt.Errorf("unsupported ANALYSIS_MODE %q", c.AnalysisMode)
	}

	switch c.StorageBackend {
	case StorageLocal:
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.MaxUploadSize <= 0 {
		return errors.New("MAX_UPLOAD_SIZE must be positive")
	}
	if c.AnalysisSyncTimeout <= 0 || c.AnalysisAsyncTimeout <= 0 {
		return errors.New("analysis timeouts must be positive")
	}
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return errors.New("token secrets must be set")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
