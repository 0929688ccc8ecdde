package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLanguages means the configuration enables no language.
	ErrNoLanguages = errors.New("no languages selected. Enable at least one language in settings")
	// ErrNoFiles means the scan found no file of an enabled language.
	ErrNoFiles = errors.New("no files matched the enabled languages")
)

// ConfigError reports configuration that prevents a run: a missing or
// non-directory root, an invalid setting, or an unreadable registry file.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// EmptyResultError means there is nothing to draw. No document is written.
type EmptyResultError struct {
	Root string
	Err  error
}

func (e *EmptyResultError) Error() string {
	if e.Root == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v under %s", e.Err, e.Root)
}

func (e *EmptyResultError) Unwrap() error { return e.Err }
