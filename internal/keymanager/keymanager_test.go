package keymanager

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/atinyakov/PassKeeper/internal/apperr"
)

func TestLoadOrCreateKey_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "secret.key")

	key, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey: %v", err)
	}
	if len(key) != KeySize {
		t.Fatalf("key length = %d; want %d", len(key), KeySize)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read key file: %v", err)
	}
	if !bytes.Equal(onDisk, key) {
		t.Errorf("key file does not hold the raw key bytes")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("key file perm = %o; want 600", perm)
		}
	}
}

func TestLoadOrCreateKey_RoundTripAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	first, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("first LoadOrCreateKey: %v", err)
	}
	second, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("second LoadOrCreateKey: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("reloaded key differs from the persisted one")
	}
}

func TestLoadOrCreateKey_DistinctKeys(t *testing.T) {
	dir := t.TempDir()
	a, err := LoadOrCreateKey(filepath.Join(dir, "a.key"))
	if err != nil {
		t.Fatalf("LoadOrCreateKey a: %v", err)
	}
	b, err := LoadOrCreateKey(filepath.Join(dir, "b.key"))
	if err != nil {
		t.Fatalf("LoadOrCreateKey b: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two fresh keys are identical")
	}
}

func TestLoadOrCreateKey_CorruptLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")
	if err := os.WriteFile(path, []byte("short"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadOrCreateKey(path)
	if !errors.Is(err, apperr.ErrIO) {
		t.Fatalf("err = %v; want ErrIO", err)
	}

	// the corrupt file must be left alone
	onDisk, _ := os.ReadFile(path)
	if string(onDisk) != "short" {
		t.Errorf("corrupt key file was overwritten")
	}
}

func TestLoadOrCreateKey_Unreadable(t *testing.T) {
	// a directory at the key path cannot be read as a file
	path := t.TempDir()

	_, err := LoadOrCreateKey(path)
	if !errors.Is(err, apperr.ErrIO) {
		t.Fatalf("err = %v; want ErrIO", err)
	}
}
