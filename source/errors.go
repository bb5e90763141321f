package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/medley-cli/medley/caps"
)

var (
	// ErrNotFound reports an unknown source or item.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedOperation reports an operation outside a source's capabilities.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrConfigMissing reports a provider that lacks required configuration.
	ErrConfigMissing = errors.New("configuration missing")

	// ErrCancelled reports an operation that was cancelled before it finished.
	ErrCancelled = errors.New("operation cancelled")

	// ErrInvalidParams reports an operation invoked without its required parameters.
	ErrInvalidParams = errors.New("invalid operation parameters")
)

// LoadError wraps a failure to load one plugin.
type LoadError struct {
	Plugin string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load plugin %s: %v", e.Plugin, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ProviderError wraps a failure reported by a provider during an operation.
type ProviderError struct {
	Source string
	Op     caps.Op
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ConfigMissingError names the configuration fields a provider requires but did not get.
type ConfigMissingError struct {
	Provider string
	Fields   []string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Provider, ErrConfigMissing, strings.Join(e.Fields, ", "))
}

func (e *ConfigMissingError) Is(target error) bool {
	return target == ErrConfigMissing
}

// Unsupported returns an error wrapping ErrUnsupportedOperation.
func Unsupported(id string, op caps.Op) error {
	return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedOperation, id, op)
}
