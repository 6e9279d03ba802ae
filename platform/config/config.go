// Package config provides client configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to talk to the EduList API.
type Config struct {
	Env                string
	APIBaseURL         string
	RequestTimeout     time.Duration
	UploadTimeout      time.Duration
	MultiUploadTimeout time.Duration
	TokenStorePath     string
	RequestsPerSec     float64
	RequestBurst       int
}

// fileConfig is the YAML file shape. Durations are strings ("10s", "1m")
// parsed with time.ParseDuration.
type fileConfig struct {
	Env                string  `yaml:"env"`
	APIBaseURL         string  `yaml:"apiBaseUrl"`
	RequestTimeout     string  `yaml:"requestTimeout"`
	UploadTimeout      string  `yaml:"uploadTimeout"`
	MultiUploadTimeout string  `yaml:"multiUploadTimeout"`
	TokenStorePath     string  `yaml:"tokenStorePath"`
	RequestsPerSec     float64 `yaml:"requestsPerSec"`
	RequestBurst       int     `yaml:"requestBurst"`
}

// Load reads configuration from the environment, with an optional YAML file
// (EDULIST_CONFIG, or ~/.edulist/config.yaml if present) providing defaults
// that env vars override.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                "development",
		APIBaseURL:         "http://localhost:5000/api",
		RequestTimeout:     10 * time.Second,
		UploadTimeout:      30 * time.Second,
		MultiUploadTimeout: 60 * time.Second,
		TokenStorePath:     defaultTokenStorePath(),
		RequestsPerSec:     10,
		RequestBurst:       20,
	}

	if path := configFilePath(); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("EDULIST_API_URL is required")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return nil, fmt.Errorf("EDULIST_API_URL must be an http(s) URL, got %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive")
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("EDULIST_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".edulist", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	if file.Env != "" {
		cfg.Env = file.Env
	}
	if file.APIBaseURL != "" {
		cfg.APIBaseURL = file.APIBaseURL
	}
	if file.TokenStorePath != "" {
		cfg.TokenStorePath = file.TokenStorePath
	}
	if file.RequestsPerSec > 0 {
		cfg.RequestsPerSec = file.RequestsPerSec
	}
	if file.RequestBurst > 0 {
		cfg.RequestBurst = file.RequestBurst
	}
	for _, field := range []struct {
		raw string
		dst *time.Duration
	}{
		{file.RequestTimeout, &cfg.RequestTimeout},
		{file.UploadTimeout, &cfg.UploadTimeout},
		{file.MultiUploadTimeout, &cfg.MultiUploadTimeout},
	} {
		if field.raw == "" {
			continue
		}
		d, err := time.ParseDuration(field.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", field.raw, err)
		}
		*field.dst = d
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.APIBaseURL = getEnv("EDULIST_API_URL", cfg.APIBaseURL)
	cfg.TokenStorePath = getEnv("EDULIST_TOKEN_STORE", cfg.TokenStorePath)
	cfg.RequestTimeout = envDuration("EDULIST_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.UploadTimeout = envDuration("EDULIST_UPLOAD_TIMEOUT", cfg.UploadTimeout)
	cfg.MultiUploadTimeout = envDuration("EDULIST_MULTI_UPLOAD_TIMEOUT", cfg.MultiUploadTimeout)
	cfg.RequestsPerSec = envFloat("EDULIST_REQUESTS_PER_SEC", cfg.RequestsPerSec)
	cfg.RequestBurst = envInt("EDULIST_REQUEST_BURST", cfg.RequestBurst)
}

func defaultTokenStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".edulist/session.db"
	}
	return filepath.Join(home, ".edulist", "session.db")
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
