// Package cache keeps provider responses on disk for a limited time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/where"
	"github.com/spf13/afero"
)

// TTL is how long responses stay valid.
const TTL = 24 * time.Hour

// Key derives a cache key from the request parts.
func Key(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, "\x00"))
	hash := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(hash[:])
}

// Read decodes the entry under key into target when it exists and is fresh.
func Read(key string, target any) bool {
	path := filepath.Join(where.Responses(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	data, err := afero.ReadFile(filesystem.API(), path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}

// Write stores data under key, replacing the entry atomically.
func Write(key string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	path := filepath.Join(where.Responses(), key)
	tmp := path + ".tmp"
	if err := afero.WriteFile(filesystem.API(), tmp, encoded, 0o644); err != nil {
		return err
	}
	return filesystem.API().Rename(tmp, path)
}

// CollectGarbage removes expired entries and returns how many were removed.
func CollectGarbage() int {
	removed := 0
	_ = afero.Walk(filesystem.API(), where.Responses(), func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > TTL {
			if filesystem.API().Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	return removed
}

// Clear removes every entry.
func Clear() error {
	err := filesystem.API().RemoveAll(where.Responses())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
