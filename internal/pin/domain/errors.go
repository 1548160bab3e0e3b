package domain

import (
	"errors"
	"fmt"
)

// ErrNotApplication is returned when a file is not an Argo CD Application manifest.
var ErrNotApplication = errors.New("not an Application")

// ErrUnsupportedSource is returned when no resolver can serve a chart source.
var ErrUnsupportedSource = errors.New("unsupported chart source")

// ErrNoEligibleVersion is returned when upstream lists no release version for a chart.
var ErrNoEligibleVersion = errors.New("no eligible version")

// ManifestError reports an Application manifest that is recognizable but malformed.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("malformed application %s: %s", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid static configuration entry. It is fatal at startup.
type ConfigError struct {
	Entry string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration entry %q: %s", e.Entry, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
