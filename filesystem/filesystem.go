// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// Every package reads and writes through API() so tests can swap the OS backend for an in-memory one.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Set installs fs as the active backend.
func Set(fs afero.Fs) {
	mu.Lock()
	defer mu.Unlock()
	backend = afero.Afero{Fs: fs}
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	Set(afero.NewOsFs())
}

// SetMemMapFs installs a volatile in-memory backend for unit tests.
func SetMemMapFs() {
	Set(afero.NewMemMapFs())
}
