package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader loads configuration from TOML files.
type TOMLLoader struct {
	fs FileSystem
}

// NewTOMLLoader creates a new TOML loader on the OS file system.
func NewTOMLLoader() *TOMLLoader {
	return &TOMLLoader{fs: DefaultFS()}
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fs FileSystem) *TOMLLoader {
	return &TOMLLoader{fs: fs}
}

// LoadFrom reads the TOML file at path into v.
func (l *TOMLLoader) LoadFrom(path string, v any) error {
	data, err := readFile(l.fs, path)
	if err != nil {
		return err
	}
	return l.Decode(path, data, v)
}

// Decode parses TOML data into v.
func (l *TOMLLoader) Decode(source string, data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			perr.Line, perr.Column = decodeErr.Position()
		}
		return perr
	}
	return nil
}
