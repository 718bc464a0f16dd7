package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrFilesystem indicates an unreadable file or directory, or a filesystem
	// anomaly such as a symbolic link, met while walking or reading the tree.
	ErrFilesystem = errors.New("filesystem error")

	// ErrDependencyInstall indicates dependency materialization failed.
	ErrDependencyInstall = errors.New("dependency install error")

	// ErrCompression indicates misuse or corrupt state of a streaming compressor.
	ErrCompression = errors.New("compression error")

	// ErrConfiguration indicates invalid user input: no entry points, an
	// unparsable entry point, or an unknown codec.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation indicates a config file failed schema validation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a file was not found.
	ErrNotFound = errors.New("not found")
)
