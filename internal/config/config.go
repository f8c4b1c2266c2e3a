package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendSimulated = "simulated"
	BackendSQL       = "sql"
)

const (
	defaultAppEnv          = "dev"
	defaultHTTPAddr        = ":8080"
	defaultLogLevel        = "info"
	defaultBackend         = BackendSimulated
	defaultDatabaseURL     = "gallery.db"
	defaultUploadMaxBytes  = "10485760"
	defaultUploadStepDelay = "200ms"
	defaultProgressStep    = "20"
	defaultRenameDelay     = "300ms"
	defaultDeleteDelay     = "500ms"
	defaultShutdownTimeout = "5s"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	LogLevel           string
	Backend            string
	DatabaseURL        string
	UploadMaxBytes     int64
	UploadStepDelay    time.Duration
	UploadProgressStep int
	RenameDelay        time.Duration
	DeleteDelay        time.Duration
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.AppEnv = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", defaultAppEnv)))
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.Backend = strings.ToLower(strings.TrimSpace(getEnv("GALLERY_BACKEND", defaultBackend)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))

	var err error
	if cfg.UploadMaxBytes, err = parseInt64Env("UPLOAD_MAX_BYTES", defaultUploadMaxBytes); err != nil {
		return nil, err
	}
	if cfg.UploadStepDelay, err = parseDurationEnv("UPLOAD_STEP_DELAY", defaultUploadStepDelay); err != nil {
		return nil, err
	}
	step, err := parseInt64Env("UPLOAD_PROGRESS_STEP", defaultProgressStep)
	if err != nil {
		return nil, err
	}
	cfg.UploadProgressStep = int(step)
	if cfg.RenameDelay, err = parseDurationEnv("RENAME_DELAY", defaultRenameDelay); err != nil {
		return nil, err
	}
	if cfg.DeleteDelay, err = parseDurationEnv("DELETE_DELAY", defaultDeleteDelay); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProd reports whether the app runs in a production-like environment.
func (c *Config) IsProd() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production" || c.AppEnv == "release"
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.Backend != BackendSimulated && cfg.Backend != BackendSQL {
		return fmt.Errorf("GALLERY_BACKEND must be one of: %s, %s", BackendSimulated, BackendSQL)
	}
	if cfg.Backend == BackendSQL && cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set when GALLERY_BACKEND=%s", BackendSQL)
	}
	if cfg.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be > 0")
	}
	if cfg.UploadStepDelay < 0 || cfg.RenameDelay < 0 || cfg.DeleteDelay < 0 {
		return fmt.Errorf("simulated delays must not be negative")
	}
	if cfg.UploadProgressStep <= 0 || cfg.UploadProgressStep > 100 || 100%cfg.UploadProgressStep != 0 {
		return fmt.Errorf("UPLOAD_PROGRESS_STEP must divide 100")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	return nil
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
