// Package repository is the credential store: the only gateway to the
// users and items tables. It seals every password on the way in and opens
// it on the way out.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/atinyakov/PassKeeper/internal/apperr"
	"github.com/atinyakov/PassKeeper/internal/db"
)

// Cipher seals and opens secret strings.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SQLiteStore implements the credential store on top of a SQLite database.
// All operations are serialized on the single connection it owns.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	cipher Cipher
	log    *zap.Logger
}

// NewSQLiteStore wraps an already prepared database handle.
// conn may be nil, in which case every operation reports apperr.ErrIO.
func NewSQLiteStore(conn *sql.DB, cipher Cipher, log *zap.Logger) *SQLiteStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLiteStore{db: conn, cipher: cipher, log: log}
}

// Open initializes the database file at path and returns a store over it.
// If the medium cannot be opened the failure is logged and returned, but the
// returned store is still non-nil: its operations fail with apperr.ErrIO
// instead of crashing the caller.
func Open(path string, cipher Cipher, log *zap.Logger) (*SQLiteStore, error) {
	conn, err := db.InitSQLite(path)
	if err != nil {
		if log != nil {
			log.Error("cannot open credential store", zap.String("path", path), zap.Error(err))
		}
		return NewSQLiteStore(nil, cipher, log), fmt.Errorf("%w: %w", apperr.ErrIO, err)
	}
	return NewSQLiteStore(conn, cipher, log), nil
}

// DB exposes the underlying handle for maintenance jobs. It may be nil.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close releases the connection. Later operations report apperr.ErrIO.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// lock acquires the store and returns the connection, or ErrIO when there
// is none. The caller must unlock on success.
func (s *SQLiteStore) lock(op string) (*sql.DB, error) {
	s.mu.Lock()
	if s.db == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s: store is not open", apperr.ErrIO, op)
	}
	return s.db, nil
}

// mapError classifies a driver error into the store's error kinds.
func (s *SQLiteStore) mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := classify(err)
	if kind == apperr.ErrIO {
		s.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	} else {
		s.log.Warn("store constraint rejected", zap.String("op", op), zap.Error(err))
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

func classify(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperr.ErrUniquenessViolation
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperr.ErrReferentialIntegrity
		}
	}
	// Drivers without typed errors still report the constraint in the text.
	le := strings.ToLower(err.Error())
	switch {
	case strings.Contains(le, "unique constraint"):
		return apperr.ErrUniquenessViolation
	case strings.Contains(le, "foreign key constraint"):
		return apperr.ErrReferentialIntegrity
	}
	return apperr.ErrIO
}
