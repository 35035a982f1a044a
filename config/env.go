package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvString returns the trimmed value of an environment variable and whether
// it was set to something non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// ParsePairs parses "name=value" pairs separated by semicolons, e.g.
// "city=1;currency=rub". Empty segments are ignored.
func ParsePairs(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if err := AddPair(out, segment); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AddPair parses a single "name=value" pair into dst.
func AddPair(dst map[string]string, pair string) error {
	name, value, ok := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid pair %q: want name=value", pair)
	}
	dst[name] = strings.TrimSpace(value)
	return nil
}
