package packet

import (
    "crypto/rand"
    "fmt"
    "io"
    "math/big"
)

// Padding bounds the decoy byte runs wrapped around each plaintext unit.
// Lengths for head and tail are drawn independently and uniformly from
// [Min,Max] on every Seal, so ciphertext length varies even when the same
// payload is sent twice.
type Padding struct {
    Min int
    Max int
}

// DefaultPadding keeps per-message overhead in the tens-to-hundreds of
// bytes range, matching human-paced interactive traffic.
var DefaultPadding = Padding{Min: 16, Max: 512}

func (p Padding) validate() error {
    if p.Min < 0 || p.Max < p.Min {
        return fmt.Errorf("invalid padding bounds [%d,%d]", p.Min, p.Max)
    }
    return nil
}

// draw returns a random length within [Min,Max].
func (p Padding) draw() (int, error) {
    span := p.Max - p.Min
    if span == 0 {
        return p.Min, nil
    }
    n, err := rand.Int(rand.Reader, big.NewInt(int64(span+1)))
    if err != nil {
        return 0, err
    }
    return p.Min + int(n.Int64()), nil
}

// Envelope is the plaintext unit as it exists just before encryption: the
// real payload sandwiched between two runs of random decoy bytes. Only the
// Body survives decryption on the far side.
type Envelope struct {
    DecoyHead []byte `cbor:"h"`
    Body      []byte `cbor:"b"`
    DecoyTail []byte `cbor:"t"`
}

// wrap builds an envelope around payload using fresh random decoys.
func wrap(payload []byte, pad Padding) (*Envelope, error) {
    if err := pad.validate(); err != nil {
        return nil, err
    }
    head, err := randomRun(pad)
    if err != nil {
        return nil, err
    }
    tail, err := randomRun(pad)
    if err != nil {
        return nil, err
    }
    if payload == nil {
        payload = []byte{}
    }
    return &Envelope{DecoyHead: head, Body: payload, DecoyTail: tail}, nil
}

func randomRun(pad Padding) ([]byte, error) {
    n, err := pad.draw()
    if err != nil {
        return nil, err
    }
    run := make([]byte, n)
    if _, err := io.ReadFull(rand.Reader, run); err != nil {
        return nil, err
    }
    return run, nil
}
