package errs

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid option. Always fatal at startup.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration %s=%q: %s", e.Field, e.Value, e.Reason)
}

// FetchError reports a single failed HTTP fetch.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ExtractionError reports one media item that could not be resolved from a page.
type ExtractionError struct {
	Source string
	Reason string
	Cause  error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed on %s: %s: %v", e.Source, e.Reason, e.Cause)
	}
	return fmt.Sprintf("extraction failed on %s: %s", e.Source, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// FilesystemError reports a directory or file that could not be created or written.
type FilesystemError struct {
	Op    string
	Path  string
	Cause error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *FilesystemError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether err must abort the whole run.
// Fetch and extraction errors are scoped to one article or item.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var fetchErr *FetchError
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return false
	}
	if errors.As(err, &fetchErr) {
		return false
	}
	return true
}
