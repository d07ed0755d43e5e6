package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddUser stores a new user with its password sealed and returns the id
// assigned by the database. A taken user name yields
// apperr.ErrUniquenessViolation and leaves the existing row untouched.
func (s *SQLiteStore) AddUser(ctx context.Context, userName, password string) (int64, error) {
	sealed, err := s.cipher.Encrypt(password)
	if err != nil {
		return 0, fmt.Errorf("AddUser: %w", err)
	}

	conn, err := s.lock("AddUser")
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	res, err := conn.ExecContext(ctx,
		`INSERT INTO users (user_name, password) VALUES (?, ?)`,
		userName, sealed,
	)
	if err != nil {
		return 0, s.mapError("AddUser", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.mapError("AddUser", err)
	}
	return id, nil
}

// UserExists reports whether a user with the given name exists.
func (s *SQLiteStore) UserExists(ctx context.Context, userName string) (bool, error) {
	conn, err := s.lock("UserExists")
	if err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	var exists bool
	err = conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE user_name = ?)`,
		userName,
	).Scan(&exists)
	if err != nil {
		return false, s.mapError("UserExists", err)
	}
	return exists, nil
}

// GetUserID returns the id of the named user. ok is false if there is none.
func (s *SQLiteStore) GetUserID(ctx context.Context, userName string) (id int64, ok bool, err error) {
	conn, err := s.lock("GetUserID")
	if err != nil {
		return 0, false, err
	}
	defer s.mu.Unlock()

	err = conn.QueryRowContext(ctx, `SELECT id FROM users WHERE user_name = ?`, userName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, s.mapError("GetUserID", err)
	}
	return id, true, nil
}

// GetUsername returns the name of the user with the given id.
func (s *SQLiteStore) GetUsername(ctx context.Context, id int64) (name string, ok bool, err error) {
	conn, err := s.lock("GetUsername")
	if err != nil {
		return "", false, err
	}
	defer s.mu.Unlock()

	err = conn.QueryRowContext(ctx, `SELECT user_name FROM users WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.mapError("GetUsername", err)
	}
	return name, true, nil
}

// GetPassword returns the decrypted password of the user with the given id.
// A stored value that cannot be opened yields apperr.ErrDecryption.
func (s *SQLiteStore) GetPassword(ctx context.Context, id int64) (password string, ok bool, err error) {
	conn, err := s.lock("GetPassword")
	if err != nil {
		return "", false, err
	}
	var sealed string
	err = conn.QueryRowContext(ctx, `SELECT password FROM users WHERE id = ?`, id).Scan(&sealed)
	s.mu.Unlock()

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.mapError("GetPassword", err)
	}

	password, err = s.cipher.Decrypt(sealed)
	if err != nil {
		return "", false, fmt.Errorf("GetPassword: user %d: %w", id, err)
	}
	return password, true, nil
}

// DeleteUser removes the user and, through the cascade, all of its items.
// Deleting an absent id is a no-op.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	conn, err := s.lock("DeleteUser")
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, err := conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return s.mapError("DeleteUser", err)
	}
	return nil
}
