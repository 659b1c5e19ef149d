// Package packet implements the encrypted line protocol: each plaintext
// unit is wrapped in random decoys, CBOR-serialized, sealed with an AEAD
// under a key derived freshly from the shared passphrase, and shipped as
// one base64 line carrying ciphertext, nonce, tag and salt.
package packet

import (
    "crypto/rand"
    "errors"
    "io"

    "golang.org/x/crypto/chacha20poly1305"

    "pipeshell/pkg/kdf"
)

var (
    // ErrDecode reports a malformed bundle or envelope.
    ErrDecode = errors.New("packet: malformed record")
    // ErrDecrypt reports an AEAD authentication failure: wrong passphrase,
    // tampering, or corruption.
    ErrDecrypt = errors.New("packet: authentication failed")
)

// Codec seals and opens encrypted records for one configured passphrase.
// Key material is derived per call and discarded; nothing is cached between
// records because every bundle carries its own salt.
type Codec struct {
    passphrase string
    iterations int
    padding    Padding
}

// New returns a codec for the given shared passphrase.
func New(passphrase string, iterations int, padding Padding) *Codec {
    if iterations <= 0 {
        iterations = kdf.DefaultIterations
    }
    if padding.Max == 0 && padding.Min == 0 {
        padding = DefaultPadding
    }
    return &Codec{passphrase: passphrase, iterations: iterations, padding: padding}
}

// Seal encrypts payload into one transport line. Salt, nonce and decoy
// lengths are all fresh, so two seals of the same payload never produce the
// same bytes.
func (c *Codec) Seal(payload []byte) ([]byte, error) {
    key, salt, err := kdf.Derive(c.passphrase, nil, c.iterations)
    if err != nil {
        return nil, err
    }
    env, err := wrap(payload, c.padding)
    if err != nil {
        return nil, err
    }
    plain, err := cborEnc.Marshal(env)
    if err != nil {
        return nil, err
    }

    aead, err := chacha20poly1305.New(key)
    if err != nil {
        return nil, err
    }
    nonce := make([]byte, aead.NonceSize())
    if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
        return nil, err
    }
    sealed := aead.Seal(nil, nonce, plain, nil)
    split := len(sealed) - aead.Overhead()

    b := &Bundle{
        Ciphertext: sealed[:split],
        Nonce:      nonce,
        Tag:        sealed[split:],
        Salt:       salt,
    }
    return b.EncodeLine()
}

// Open decrypts one transport line and returns the original payload. It
// fails with ErrDecode on malformed input and ErrDecrypt when the
// authentication tag does not verify; it never returns wrong plaintext.
func (c *Codec) Open(line []byte) ([]byte, error) {
    b, err := DecodeLine(line)
    if err != nil {
        return nil, err
    }
    if len(b.Nonce) != chacha20poly1305.NonceSize || len(b.Tag) != chacha20poly1305.Overhead {
        return nil, ErrDecode
    }

    key, _, err := kdf.Derive(c.passphrase, b.Salt, c.iterations)
    if err != nil {
        return nil, err
    }
    aead, err := chacha20poly1305.New(key)
    if err != nil {
        return nil, err
    }

    sealed := make([]byte, 0, len(b.Ciphertext)+len(b.Tag))
    sealed = append(sealed, b.Ciphertext...)
    sealed = append(sealed, b.Tag...)
    plain, err := aead.Open(nil, b.Nonce, sealed, nil)
    if err != nil {
        return nil, ErrDecrypt
    }

    var env Envelope
    if err := cborDec.Unmarshal(plain, &env); err != nil {
        return nil, ErrDecode
    }
    return env.Body, nil
}
