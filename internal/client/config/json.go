package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/siteadmin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations accept strings like "30s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	Email          string         `json:"email"`
	DatabaseDSN    string         `json:"database_dsn"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	ListCacheTTL   timex.Duration `json:"list_cache_ttl"`
}

// parseJson overlays cfg with the non-empty values of the JSON file at path.
// An empty path is a no-op.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Email != "" {
		cfg.Email = jc.Email
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ListCacheTTL.Duration > 0 {
		cfg.ListCacheTTL = jc.ListCacheTTL.Duration
	}
	return nil
}
