package packet

import (
    "encoding/base64"

    cbor "github.com/fxamacker/cbor/v2"
)

// Bundle is the wire-visible unit: everything the receiver needs to decrypt
// one record, minus the passphrase. Nonce and Salt are fresh per bundle and
// never reused; the bundle lives only for the duration of one transfer.
type Bundle struct {
    Ciphertext []byte `cbor:"ct"`
    Nonce      []byte `cbor:"n"`
    Tag        []byte `cbor:"tag"`
    Salt       []byte `cbor:"s"`
}

var (
    cborEnc cbor.EncMode
    cborDec cbor.DecMode
)

func init() {
    em, err := cbor.CanonicalEncOptions().EncMode()
    if err != nil {
        panic(err)
    }
    dm, err := cbor.DecOptions{}.DecMode()
    if err != nil {
        panic(err)
    }
    cborEnc, cborDec = em, dm
}

// EncodeLine renders the bundle as CBOR wrapped in base64: a single
// newline-free token suitable for the line-oriented relay.
func (b *Bundle) EncodeLine() ([]byte, error) {
    raw, err := cborEnc.Marshal(b)
    if err != nil {
        return nil, err
    }
    out := make([]byte, base64.RawStdEncoding.EncodedLen(len(raw)))
    base64.RawStdEncoding.Encode(out, raw)
    return out, nil
}

// DecodeLine parses one transport line back into a bundle. Any malformed
// input, base64 or CBOR, reports ErrDecode.
func DecodeLine(line []byte) (*Bundle, error) {
    raw := make([]byte, base64.RawStdEncoding.DecodedLen(len(line)))
    n, err := base64.RawStdEncoding.Decode(raw, line)
    if err != nil {
        return nil, ErrDecode
    }
    var b Bundle
    if err := cborDec.Unmarshal(raw[:n], &b); err != nil {
        return nil, ErrDecode
    }
    return &b, nil
}
