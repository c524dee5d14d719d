// Package config loads hookmgr configuration.
//
// Configuration is read from a single TOML or YAML file, chosen by file
// extension, and then overridden by environment variables:
//
//	HOOKMGR_LOG_LEVEL   debug, info, warn or error
//	HOOKMGR_LOG_FORMAT  text or json
//
// A minimal TOML file:
//
//	log_level = "debug"
//	watch = true
//
//	[[plugins]]
//	name = "audit"
//	path = "plugins/audit.lua"
//
// Relative plugin paths are resolved against the directory of the
// configuration file.
package config
