// Package config loads sharemd's TOML configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/sharemd/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. Empty or zero fields keep their defaults
//
// # Default Values
//
//   - base_url: https://sharemd.app/
//   - link_file: ~/.local/state/sharemd/link.url
//   - debounce_ms: 500
//   - max_url_length: 8000 (negative disables the warning)
//   - log_file: ~/.local/state/sharemd/sharemd.log
//   - log_level: info
//   - glamour_style: dark
//
// # TOML Format
//
//	base_url = "https://sharemd.app/"
//	link_file = "~/notes/current.url"
//	debounce_ms = 300
//	glamour_style = "dracula"
//
// Tilde expansion applies to link_file and log_file. base_url must be an
// absolute URL; anything else is a parse error.
//
// Missing config files are NOT an error. sharemd works out of the box.
package config
