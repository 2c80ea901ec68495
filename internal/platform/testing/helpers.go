package testing

import (
	"testing"
	"time"

	"gatepass-server-go/internal/platform/config"
	"gatepass-server-go/internal/platform/logging"
)

// SetupTestConfig returns a config suitable for unit tests: quiet logging
// into a per-test temp dir and a fixed signing secret.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Log.Level = "error"
	cfg.Log.Dir = t.TempDir()
	cfg.Log.File = "test.log"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = config.Duration(time.Hour)
	return cfg
}

// SetupTestLogger builds a logger writing into a temp dir and closes it
// when the test finishes.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	cfg := SetupTestConfig(t)
	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
