// Package config loads the potluck client configuration.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, else ~/.config/potluck/config.toml);
//     a missing file is not an error
//  3. POTLUCK_STORE_URL and POTLUCK_API_KEY from the environment
//
// Command-line flags are applied on top by cmd/potluck.
//
// # Keys
//
//	store_url        base URL of the record store   (http://127.0.0.1:7488)
//	api_key          sent as the apikey header      (empty)
//	table            collection name                (guests)
//	poll_seconds     refresh cadence                (5)
//	locale           name sort order                (en)
//	log_level        zerolog level                  (info)
//	log_file         client log path                (~/.local/state/potluck/potluck.log)
//	metrics_addr     Prometheus listener, optional  (disabled)
//	remove_rollback  snapshot or record             (snapshot)
//
// String values are trimmed and blank values fall back to defaults. Paths
// starting with ~ are expanded to the user's home directory. An unknown
// log_level or remove_rollback is an error.
package config
