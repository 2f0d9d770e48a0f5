// Package config holds the runtime configuration of the twick tools.
//
// Values are layered, lowest priority first:
//
//  1. built-in defaults (Default)
//  2. configuration files, TOML or YAML, merged in the order given
//  3. environment variables prefixed with TWICK_
//
// Command-line flags are applied by the caller on top of the result.
//
// A file uses the same section names as the Config struct:
//
//	[history]
//	depth = 20
//	resume = true
//
//	[persistence]
//	driver = "sqlite"
//	path = "twick.db"
//
// The matching environment variables are TWICK_HISTORY_DEPTH,
// TWICK_HISTORY_RESUME, TWICK_PERSISTENCE_DRIVER and TWICK_PERSISTENCE_PATH.
// Durations are written as strings such as "1s" or "250ms".
package config
