// Package config loads runtime configuration for the siteadmin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file passed with --config.
//  3. SITEADMIN_* environment variables.
//  4. Command-line flags, bound by the CLI itself.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "email": "admin@example.com",
//	  "database_dsn": "postgres://...",
//	  "request_timeout": "30s",
//	  "list_cache_ttl": "1m"
//	}
package config
