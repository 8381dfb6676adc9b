// Package config loads the settings parley needs to reach a WAHA server.
//
// # Overview
//
// Configuration lives in a small TOML file. Every field is optional in the
// file; missing values fall back to defaults and the WAHA_* environment
// variables override whatever the file says.
//
// # Resolution Order
//
//  1. Defaults
//  2. ~/.config/parley/config.toml, or the path passed to Load
//  3. WAHA_URL, WAHA_API_KEY and WAHA_SESSION
//
// A missing file is not an error. A malformed file or an unparseable
// interval is.
//
// # TOML Format
//
//	waha_url = "http://localhost:3000"
//	waha_api_key = "secret"
//	default_session = "default"
//	chats_poll_interval = "3s"
//	messages_poll_interval = "2s"
//	log_file = "~/.local/state/parley/parley.log"
//
// Intervals use Go duration syntax. Tilde expansion is applied to the config
// path and log_file.
//
// # Validation
//
// Load does not validate. Call Validate before connecting; it joins every
// problem into one error so the user sees all of them at once.
//
// # Saving
//
// Save writes the file with mode 0600 because it carries the API key. It is
// used by `parley --init` to bootstrap a config from flags and environment.
package config
