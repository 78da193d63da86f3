// Package cryptox implements symmetric encryption of secret strings
// (application passwords) stored at rest. The server constructs a single
// Cipher from its configured key and injects it into the configuration
// service; there is no package-level key state.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"

	"github.com/dmitrijs2005/mailvault/internal/common"
)

const nonceSize = 12

// Cipher encrypts and decrypts short secret strings with AES-256-GCM.
// The key is fixed at construction; every Encrypt call uses a fresh random
// nonce, so ciphertexts for equal plaintexts differ.
type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from an arbitrary key string. The key is run through
// SHA-256 to obtain a 32-byte AES key, so operators may configure any
// non-empty passphrase. Returns common.ErrValidation for an empty key.
func New(key string) (*Cipher, error) {
	if key == "" {
		return nil, common.ErrValidation
	}

	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns nonce||ciphertext as a single blob
// suitable for storing in a bytea column.
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return append(nonce, sealed...), nil
}

// Decrypt opens a blob produced by Encrypt. Any authentication failure
// (wrong key, truncated or corrupted blob) is reported as
// common.ErrDecryptionFailed.
func (c *Cipher) Decrypt(blob []byte) (string, error) {
	if len(blob) <= nonceSize {
		return "", common.ErrDecryptionFailed
	}

	nonce, sealed := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", common.ErrDecryptionFailed
	}
	return string(plaintext), nil
}
