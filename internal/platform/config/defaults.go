package config

import "time"

// DefaultConfig returns the baseline configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:             "0.0.0.0",
			Port:           8000,
			RequestTimeout: Duration(15 * time.Second),
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Database: DatabaseConfig{
			Path: "data/gatepass.db",
		},
		Auth: AuthConfig{
			JWTSecret:         "",
			TokenTTL:          Duration(72 * time.Hour),
			SeedAdminUser:     "admin",
			SeedAdminPassword: "admin123",
		},
		Upload: UploadConfig{
			Endpoint: "",
			Folder:   "visitor_passes",
			Timeout:  Duration(10 * time.Second),
		},
	}
}
