// Package license implements the allow-list gate guarding cosmo-server's
// AI routes.
//
// # Overview
//
// Access control is a single shared set of opaque license keys, loaded
// once at startup and never mutated. There are no users, sessions, or
// tokens. A caller proves entitlement by sending any configured key in
// the x-license-key header.
//
// # Key Sources
//
// Keys come from two places, merged at startup:
//
//   - license.keys in the YAML config (inline list)
//   - license.keys_file, a TOML file:
//
//     keys = [
//       "COSMO-1234",
//     ]
//
// The keys file supports ${VAR} environment expansion so deployments can
// keep key material out of the file itself.
//
// # Disabled Gate
//
// An empty merged set disables the gate: every request passes and a
// warning is logged at startup. This keeps local development friction-free
// while making the open state visible to operators.
//
// # Usage
//
//	gate := license.NewGate(keys, logger)
//	mux.Handle("/api/chat", license.Middleware(gate)(chatHandler))
//
// Denied requests receive HTTP 403 with a fixed kid-friendly body the UI
// renders as a chat message.
package license
