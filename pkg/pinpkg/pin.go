// Package pinpkg provides salted PIN hashing and verification.
package pinpkg

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
)

// SaltSize is the number of random bytes generated for every credential.
const SaltSize = 16

// ErrEmptyPin indicates that an empty PIN was given.
var ErrEmptyPin = errors.New("empty pin")

// Credential holds a salted one-way hash of a PIN.
type Credential struct {
	Salt []byte `json:"salt"`
	Hash []byte `json:"hash"`
}

// New returns a credential for the given PIN with a freshly generated salt.
func New(pin string) (Credential, error) {
	if pin == "" {
		return Credential{}, ErrEmptyPin
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return Credential{}, err
	}

	return Credential{
		Salt: salt,
		Hash: sum(salt, pin),
	}, nil
}

// Verify checks if the PIN matches the credential.
func (c Credential) Verify(pin string) bool {
	if !c.Valid() {
		return false
	}

	return bytes.Equal(sum(c.Salt, pin), c.Hash)
}

// Rotate returns a brand new credential for newPin. Nothing of c is reused.
func (c Credential) Rotate(newPin string) (Credential, error) {
	return New(newPin)
}

// Valid reports whether the credential is structurally sound.
func (c Credential) Valid() bool {
	return len(c.Salt) >= SaltSize && len(c.Hash) == sha256.Size
}

func sum(salt []byte, pin string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(pin))

	return h.Sum(nil)
}
