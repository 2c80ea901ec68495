package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gatepass-server-go/internal/platform/errors"
)

const defaultConfigPath = ".config.yaml"

// Loader reads configuration from an optional YAML file layered over defaults,
// with environment variables applied last.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader that reads from the default config path.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      defaultConfigPath,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment variables")
		}
	}

	cfg := DefaultConfig()

	path := l.path
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "config.load", "failed to parse config file", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.KindConfig, "config.load", "failed to read config file", err)
	} else {
		path = ""
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   path,
	}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEPASS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GATEPASS_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("GATEPASS_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GATEPASS_UPLOAD_ENDPOINT"); v != "" {
		cfg.Upload.Endpoint = v
	}
	if v := os.Getenv("GATEPASS_UPLOAD_API_KEY"); v != "" {
		cfg.Upload.APIKey = v
	}
	if v := os.Getenv("GATEPASS_TOKEN_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = Duration(ttl)
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New(errors.KindConfig, "config.validate",
			fmt.Sprintf("invalid server port %d", cfg.Server.Port))
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New(errors.KindConfig, "config.validate",
			"jwt secret is required (set auth.jwt_secret or GATEPASS_JWT_SECRET)")
	}
	if cfg.Auth.TokenTTL.Std() <= 0 {
		return errors.New(errors.KindConfig, "config.validate", "token ttl must be positive")
	}
	if cfg.Database.Path == "" {
		return errors.New(errors.KindConfig, "config.validate", "database path is required")
	}
	return nil
}
