// Package keymanager owns the lifecycle of the symmetric key used to seal
// stored passwords: it loads the key from disk or generates and persists a
// new one on first run.
package keymanager

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atinyakov/PassKeeper/internal/apperr"
)

// KeySize is the length in bytes of the raw key (AES-256).
const KeySize = 32

// LoadOrCreateKey returns the key stored at path. If no file exists there,
// a new random key is generated, written with owner-only permissions and
// returned. An existing file is never overwritten: once a key is persisted
// every later call must return the same bytes, otherwise previously sealed
// data becomes unreadable.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: key file %s has %d bytes, want %d", apperr.ErrIO, path, len(key), KeySize)
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: read key file: %w", apperr.ErrIO, err)
	}

	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%w: create key dir: %w", apperr.ErrIO, err)
		}
	}

	// O_EXCL keeps a concurrently created key from being clobbered.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: create key file: %w", apperr.ErrIO, err)
	}
	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: write key file: %w", apperr.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: close key file: %w", apperr.ErrIO, err)
	}
	return key, nil
}
