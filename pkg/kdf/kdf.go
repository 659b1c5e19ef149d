// Package kdf derives per-message symmetric keys from a shared passphrase.
package kdf

import (
    "crypto/rand"
    "crypto/sha256"
    "fmt"
    "io"

    "golang.org/x/crypto/pbkdf2"
)

const (
    // KeySize is the derived symmetric key length.
    KeySize = 32
    // SaltSize is the random salt length generated when none is supplied.
    SaltSize = 32
    // DefaultIterations is a deliberately modest PBKDF2 cost. The KDF only
    // has to be consistent between peers; it runs once per message.
    DefaultIterations = 4096
)

// Derive stretches passphrase into a 256-bit key. A nil salt requests a
// fresh random one; the salt actually used is returned so the receiver can
// re-derive the same key from the value embedded in each bundle.
// Identical (passphrase, salt, iterations) always yield an identical key.
func Derive(passphrase string, salt []byte, iterations int) (key, usedSalt []byte, err error) {
    if iterations <= 0 {
        iterations = DefaultIterations
    }
    if salt == nil {
        salt = make([]byte, SaltSize)
        if _, err := io.ReadFull(rand.Reader, salt); err != nil {
            return nil, nil, fmt.Errorf("generate salt: %w", err)
        }
    }
    key = pbkdf2.Key([]byte(passphrase), salt, iterations, KeySize, sha256.New)
    return key, salt, nil
}
