package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL          string
	Keyword          string
	Cookies          map[string]string
	Params           map[string]string
	Timeout          time.Duration // zero disables the request timeout
	UserAgent        string        // empty picks a random browser agent per request
	RespectRobotsTxt bool
	DedupeMaxSize    int
	OutputFile       string
	OutputFormat     string // csv, json, or dual
	Verbose          bool
	MetricsAddr      string
}

// DefaultConfig returns the defaults for the n-katalog.ru target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "https://n-katalog.ru",
		Keyword:          "Palit GeForce RTX 3060",
		Cookies:          map[string]string{},
		Params:           map[string]string{},
		Timeout:          0,
		UserAgent:        "",
		RespectRobotsTxt: false,
		DedupeMaxSize:    10000,
		OutputFile:       "data/raw.json",
		OutputFormat:     "json",
		Verbose:          true,
		MetricsAddr:      "",
	}
}

// Origin returns the base URL without a trailing slash, ready for
// concatenation with the relative links found in markup.
func (c *Config) Origin() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// SearchURL returns the search endpoint of the catalog.
func (c *Config) SearchURL() string {
	return c.Origin() + "/search"
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if strings.TrimSpace(c.Keyword) == "" {
		return fmt.Errorf("keyword cannot be empty")
	}
	if _, ok := c.Params["keyword"]; ok {
		return fmt.Errorf("params cannot override the keyword parameter")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}

	return nil
}
