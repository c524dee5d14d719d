package config

import "os"

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel  = "HOOKMGR_LOG_LEVEL"
	EnvLogFormat = "HOOKMGR_LOG_FORMAT"
)

// Env looks up an environment variable.
type Env func(key string) (string, bool)

// OSEnv reads the process environment.
var OSEnv Env = os.LookupEnv

// MapEnv returns an Env backed by m.
func MapEnv(m map[string]string) Env {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// ApplyEnv overrides settings from env. Empty values are ignored.
func (c *Config) ApplyEnv(env Env) {
	if env == nil {
		return
	}
	if v, ok := env(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := env(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
}
