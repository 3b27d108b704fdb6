// Package cryptox seals store secrets kept at rest by the profiles
// repository.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

// keySalt is fixed so the same master secret always derives the same key
// across restarts.
var keySalt = []byte("sharebox/profile-secrets/v1")

// ErrMalformed is returned for ciphertext too short to contain a nonce.
var ErrMalformed = errors.New("malformed ciphertext")

// DeriveKey stretches a master secret into a 32-byte AES-256 key.
func DeriveKey(secret []byte) []byte {
	return argon2.IDKey(secret, keySalt, 1, 64*1024, 4, 32)
}

// SecretBox encrypts small values with AES-GCM. The nonce is prepended to
// the ciphertext.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox builds a box from a master secret.
func NewSecretBox(secret []byte) (*SecretBox, error) {
	block, err := aes.NewCipher(DeriveKey(secret))
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SecretBox{aead: aead}, nil
}

// Seal encrypts plaintext using a fresh random nonce.
func (b *SecretBox) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (b *SecretBox) Open(sealed []byte) ([]byte, error) {
	ns := b.aead.NonceSize()
	if len(sealed) < ns {
		return nil, ErrMalformed
	}
	return b.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
}
