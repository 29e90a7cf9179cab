// Package file persists settings to ~/.datahub/config.toml.
//
// Keys are dotted ("notion.token", "cache.ttl") and map to TOML tables.
// Effective settings are resolved by viper in the cli package; this store
// backs the config get/set commands.
package file
