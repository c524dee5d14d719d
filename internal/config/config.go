package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/dshills/hookmgr/internal/config/loader"
	"github.com/dshills/hookmgr/internal/logging"
)

// Config is the hookmgr configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `toml:"log_format" yaml:"log_format"`

	// Watch enables reloading plugins when their files change.
	Watch bool `toml:"watch" yaml:"watch"`

	// Plugins lists the Lua plugin scripts to load.
	Plugins []PluginConfig `toml:"plugins" yaml:"plugins" validate:"dive"`
}

// PluginConfig describes one plugin script.
type PluginConfig struct {
	Name     string `toml:"name" yaml:"name" validate:"required"`
	Path     string `toml:"path" yaml:"path" validate:"required"`
	Disabled bool   `toml:"disabled" yaml:"disabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: string(logging.FormatText),
	}
}

// Load reads the configuration file at path from the OS file system.
func Load(path string) (*Config, error) {
	return LoadFS(loader.DefaultFS(), path, OSEnv)
}

// LoadFS reads the configuration at path from fsys and applies overrides
// from env. Missing settings keep their defaults. The result is validated.
func LoadFS(fsys loader.FileSystem, path string, env Env) (*Config, error) {
	l, err := loader.ForPath(fsys, path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := l.LoadFrom(path, cfg); err != nil {
		return nil, err
	}

	cfg.resolvePaths(filepath.Dir(path))
	cfg.ApplyEnv(env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths makes relative plugin paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	for i := range c.Plugins {
		p := c.Plugins[i].Path
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		c.Plugins[i].Path = filepath.Join(dir, p)
	}
}

// Validate checks the configuration. All problems are reported together.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result = multierror.Append(result, &ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("unknown level %q", c.LogLevel),
		})
	}

	switch logging.Format(strings.ToLower(c.LogFormat)) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		result = multierror.Append(result, &ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("unknown format %q", c.LogFormat),
		})
	}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, fieldError(fe))
		}
	}

	seen := make(map[string]bool, len(c.Plugins))
	for i, p := range c.Plugins {
		if p.Name == "" {
			continue
		}
		if seen[p.Name] {
			result = multierror.Append(result, &ValidationError{
				Field:   fmt.Sprintf("plugins[%d].name", i),
				Message: fmt.Sprintf("duplicate plugin %q", p.Name),
			})
		}
		seen[p.Name] = true
	}

	return result.ErrorOrNil()
}

// fieldError converts a struct validation failure into a ValidationError
// named after the configuration key.
func fieldError(fe validator.FieldError) *ValidationError {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	msg := fmt.Sprintf("failed %q check", fe.Tag())
	if fe.Tag() == "required" {
		msg = "must not be empty"
	}
	return &ValidationError{Field: field, Message: msg}
}

// EnabledPlugins returns the plugins that are not disabled.
func (c *Config) EnabledPlugins() []PluginConfig {
	var out []PluginConfig
	for _, p := range c.Plugins {
		if !p.Disabled {
			out = append(out, p)
		}
	}
	return out
}

// Logging returns the logger configuration described by c.
func (c *Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	if c.LogLevel != "" {
		lc.Level = logging.ParseLevel(c.LogLevel)
	}
	if c.LogFormat != "" {
		lc.Format = logging.Format(strings.ToLower(c.LogFormat))
	}
	return lc
}
