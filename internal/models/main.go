// Package models defines the core data structures for users and items.
package models

// User represents an account of the password manager.
type User struct {
	// ID is the surrogate key assigned by the store.
	ID int64
	// UserName is the unique, case-sensitive login name.
	UserName string
	// Password is the sealed master password.
	Password string
}

// Item is a single stored secret owned by exactly one user.
type Item struct {
	// ID is the surrogate key assigned by the store.
	ID int64
	// UserID references the owning User.
	UserID int64
	// ItemName is the display label; not unique.
	ItemName string
	// Username is the login for the secret, kept in plaintext.
	Username string
	// Password is the sealed secret. It is left encrypted in bulk listings.
	Password string
}

// ItemDetails is an item with its password decrypted, ready for display.
type ItemDetails struct {
	ItemName string
	Username string
	Password string
}
