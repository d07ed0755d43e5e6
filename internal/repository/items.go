package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/PassKeeper/internal/apperr"
	"github.com/atinyakov/PassKeeper/internal/models"
)

// AddItem stores a new item for userID with its password sealed and returns
// the assigned id. An unknown userID yields apperr.ErrReferentialIntegrity.
func (s *SQLiteStore) AddItem(ctx context.Context, userID int64, itemName, username, password string) (int64, error) {
	sealed, err := s.cipher.Encrypt(password)
	if err != nil {
		return 0, fmt.Errorf("AddItem: %w", err)
	}

	conn, err := s.lock("AddItem")
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	res, err := conn.ExecContext(ctx, `
		INSERT INTO items (user_id, item_name, username, password)
		VALUES (?, ?, ?, ?)
	`, userID, itemName, username, sealed)
	if err != nil {
		return 0, s.mapError("AddItem", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.mapError("AddItem", err)
	}
	return id, nil
}

// DeleteItem removes a single item. Deleting an absent id is a no-op.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id int64) error {
	conn, err := s.lock("DeleteItem")
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, err := conn.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return s.mapError("DeleteItem", err)
	}
	return nil
}

// GetAllItems returns the items of userID ordered by id. Passwords are left
// sealed; this accessor is meant for listings only.
func (s *SQLiteStore) GetAllItems(ctx context.Context, userID int64) ([]models.Item, error) {
	conn, err := s.lock("GetAllItems")
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	rows, err := conn.QueryContext(ctx, `
		SELECT id, user_id, item_name, username, password FROM items
		WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return nil, s.mapError("GetAllItems", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var (
			it                 models.Item
			username, password sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.ItemName, &username, &password); err != nil {
			return nil, s.mapError("GetAllItems: scan", err)
		}
		it.Username = username.String
		it.Password = password.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError("GetAllItems", err)
	}
	return items, nil
}

// GetAllItemNames returns the item names of userID ordered by id.
func (s *SQLiteStore) GetAllItemNames(ctx context.Context, userID int64) ([]string, error) {
	conn, err := s.lock("GetAllItemNames")
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	rows, err := conn.QueryContext(ctx,
		`SELECT item_name FROM items WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, s.mapError("GetAllItemNames", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, s.mapError("GetAllItemNames: scan", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError("GetAllItemNames", err)
	}
	return names, nil
}

// GetItemID returns the id of an item called itemName. Names are not unique
// and the lookup is not scoped to a user; when several items match, the one
// with the lowest id wins.
func (s *SQLiteStore) GetItemID(ctx context.Context, itemName string) (id int64, ok bool, err error) {
	conn, err := s.lock("GetItemID")
	if err != nil {
		return 0, false, err
	}
	defer s.mu.Unlock()

	err = conn.QueryRowContext(ctx,
		`SELECT id FROM items WHERE item_name = ? ORDER BY id LIMIT 1`, itemName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, s.mapError("GetItemID", err)
	}
	return id, true, nil
}

// GetItemDetails returns the item with its password decrypted. An absent id
// yields apperr.ErrNotFound, a corrupt password apperr.ErrDecryption.
func (s *SQLiteStore) GetItemDetails(ctx context.Context, itemID int64) (models.ItemDetails, error) {
	conn, err := s.lock("GetItemDetails")
	if err != nil {
		return models.ItemDetails{}, err
	}
	var (
		details            models.ItemDetails
		username, password sql.NullString
	)
	err = conn.QueryRowContext(ctx,
		`SELECT item_name, username, password FROM items WHERE id = ?`, itemID,
	).Scan(&details.ItemName, &username, &password)
	s.mu.Unlock()

	if errors.Is(err, sql.ErrNoRows) {
		return models.ItemDetails{}, fmt.Errorf("GetItemDetails: item %d: %w", itemID, apperr.ErrNotFound)
	}
	if err != nil {
		return models.ItemDetails{}, s.mapError("GetItemDetails", err)
	}

	details.Username = username.String
	if password.Valid {
		details.Password, err = s.cipher.Decrypt(password.String)
		if err != nil {
			return models.ItemDetails{}, fmt.Errorf("GetItemDetails: item %d: %w", itemID, err)
		}
	}
	return details, nil
}
