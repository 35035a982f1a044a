package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty keyword",
			mutate: func(cfg *Config) {
				cfg.Keyword = "   "
			},
			wantErr: "keyword",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "keyword param override",
			mutate: func(cfg *Config) {
				cfg.Params["keyword"] = "other"
			},
			wantErr: "keyword parameter",
		},
		{
			name: "zero dedupe size",
			mutate: func(cfg *Config) {
				cfg.DedupeMaxSize = 0
			},
			wantErr: "dedupe",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Timeout != 0 {
		t.Fatalf("default timeout = %v, want none", cfg.Timeout)
	}
}

func TestSearchURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://example.test/"
	if got := cfg.SearchURL(); got != "http://example.test/search" {
		t.Fatalf("SearchURL() = %q", got)
	}
}

func TestParsePairs(t *testing.T) {
	got, err := ParsePairs(" city=1 ; currency=rub;; ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got["city"] != "1" || got["currency"] != "rub" {
		t.Fatalf("ParsePairs() = %v", got)
	}

	if _, err := ParsePairs("novalue"); err == nil {
		t.Fatalf("expected error for pair without '='")
	}
	if _, err := ParsePairs("=x"); err == nil {
		t.Fatalf("expected error for pair without name")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SCRAPER_TEST_INT", "42")
	value, ok, err := EnvInt("SCRAPER_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt() = %d, %v, %v", value, ok, err)
	}

	t.Setenv("SCRAPER_TEST_INT", "many")
	if _, _, err := EnvInt("SCRAPER_TEST_INT"); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv("SCRAPER_TEST_INT", "  ")
	if _, ok, err := EnvInt("SCRAPER_TEST_INT"); ok || err != nil {
		t.Fatalf("blank value should be treated as unset")
	}
}
