package config

import (
	"errors"
	"fmt"
)

// Configuration errors. ErrSourceMissing and ErrOutlineMissing abort a run
// before any output is written.
var (
	ErrNoSourceDir    = errors.New("no source directory configured")
	ErrNoOutputDir    = errors.New("no output directory configured")
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")
	ErrInvalidSiteURL = errors.New("invalid site url: must be an absolute url with a host")
	ErrNoAPIKey       = errors.New("DITAGEN_API_KEY is required")

	ErrSourceMissing  = errors.New("source directory not found")
	ErrOutlineMissing = errors.New("outline not found")

	// ErrConfigNotFound is returned when an explicitly named config file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// InputError names the missing path behind a fatal input error.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Path)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is a configuration error that must abort a run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSourceMissing) ||
		errors.Is(err, ErrOutlineMissing) ||
		errors.Is(err, ErrNoSourceDir) ||
		errors.Is(err, ErrNoOutputDir) ||
		errors.Is(err, ErrInvalidWorkers) ||
		errors.Is(err, ErrInvalidSiteURL)
}
