package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("EDULIST_API_URL", "https://api.edulist.example.com/api/")
	t.Setenv("EDULIST_REQUEST_TIMEOUT", "5s")
	t.Setenv("EDULIST_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.edulist.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.UploadTimeout != 30*time.Second || cfg.MultiUploadTimeout != 60*time.Second {
		t.Fatalf("expected default upload timeouts, got %v/%v", cfg.UploadTimeout, cfg.MultiUploadTimeout)
	}
}

func TestLoad_RejectsNonHTTPURL(t *testing.T) {
	t.Setenv("EDULIST_API_URL", "ftp://example.com")
	t.Setenv("EDULIST_CONFIG", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-http URL")
	}
}

func TestLoad_YAMLFileProvidesDefaultsEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "apiBaseUrl: https://file.example.com/api\nrequestTimeout: 7s\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("EDULIST_CONFIG", path)
	t.Setenv("EDULIST_API_URL", "placeholder")
	os.Unsetenv("EDULIST_API_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://file.example.com/api" {
		t.Fatalf("expected file value, got %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 7*time.Second {
		t.Fatalf("expected 7s from file, got %v", cfg.RequestTimeout)
	}

	t.Setenv("EDULIST_API_URL", "https://env.example.com/api")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://env.example.com/api" {
		t.Fatalf("env must override the file, got %q", cfg.APIBaseURL)
	}
}
