package config

import (
	"errors"
	"fmt"

	"github.com/dshills/hookmgr/internal/config/loader"
)

// Sentinel errors for configuration.
var (
	// ErrUnsupportedFormat is returned for files that are not TOML or YAML.
	ErrUnsupportedFormat = loader.ErrUnsupportedFormat

	// ErrInvalidConfig is returned when validation fails.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ParseError is returned when a configuration file cannot be decoded.
type ParseError = loader.ParseError

// ValidationError describes a single invalid setting.
type ValidationError struct {
	// Field is the dotted path of the invalid setting.
	Field string
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is allows errors.Is to match ValidationError with ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}
