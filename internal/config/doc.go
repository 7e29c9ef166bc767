// Package config handles configuration loading for cosmo-server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from COSMO_CONFIG environment variable
//  2. ./config.yaml (current directory)
//  3. ~/.config/cosmo/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	ai:
//	  api_key: "${GEMINI_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8787"
//
// Database:
//
//	database:
//	  path: "/var/lib/cosmo/cosmo.db"
//
// Generative AI provider:
//
//	ai:
//	  api_key: "${GEMINI_API_KEY}"   # empty disables AI features
//	  chat_model: "gemini-2.5-flash"
//	  image_model: "gemini-2.5-flash-image-preview"
//	  temperature: 0.9
//	  top_p: 0.95
//	  request_timeout: "90s"
//	  history_window: 6
//
// License gate:
//
//	license:
//	  keys:
//	    - "COSMO-1234"
//	  keys_file: "/etc/cosmo/keys.toml"
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "cosmo"
//	  auth_key: "${TS_AUTHKEY}"
//	  funnel: false
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - HTTP address present (unless Tailscale serving is enabled)
//   - Tailscale hostname present when Tailscale is enabled
//   - Database path present
//   - Duration format validity
//
// A missing AI api_key is not a validation error: the server starts with
// AI features disabled and reports ai_configured=false from the health
// endpoint.
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/cosmo/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
