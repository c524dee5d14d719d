// Package loader decodes configuration files.
//
// Loaders read a file through a FileSystem and decode it into a Go value
// using the struct tags of the target. TOML and YAML are supported; the
// format is chosen from the file extension.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader decodes a configuration source into v.
type Loader interface {
	// LoadFrom reads the file at path and decodes it into v.
	// Returns an error wrapping fs.ErrNotExist if the file is missing.
	LoadFrom(path string, v any) error

	// Decode decodes raw data into v. source names the data in errors.
	Decode(source string, data []byte, v any) error
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// ForPath returns the loader matching the extension of path.
func ForPath(fsys FileSystem, path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(fsys), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(fsys), nil
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

// readFile reads path, wrapping errors with the path.
func readFile(fsys FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, nil
}
