// Package crypto seals individual secret strings with the process key.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/atinyakov/PassKeeper/internal/apperr"
)

// Cipher wraps an AES-256-GCM AEAD. Ciphertexts are base64 encoded
// nonce || sealed data, so they can be stored in a TEXT column.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives the AEAD from a raw key produced by the key manager.
func NewCipher(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. Two calls with the
// same input yield different ciphertexts.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Malformed input, a foreign
// key or any tampering yields apperr.ErrDecryption.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %w", apperr.ErrDecryption, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", apperr.ErrDecryption)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrDecryption, err)
	}
	return string(plain), nil
}
