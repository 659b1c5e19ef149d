package packet

import (
    "bytes"
    "errors"
    "testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
    c := New("secret1", 1024, Padding{Min: 4, Max: 64})
    payloads := [][]byte{
        []byte("whoami\n"),
        []byte("x"),
        {},
        {0x00, 0xFF, 0x7F, 0x0A, 0x0D},
        bytes.Repeat([]byte("interactive "), 100),
    }
    for _, p := range payloads {
        line, err := c.Seal(p)
        if err != nil { t.Fatalf("seal %q: %v", p, err) }
        got, err := c.Open(line)
        if err != nil { t.Fatalf("open %q: %v", p, err) }
        if !bytes.Equal(got, p) { t.Fatalf("round trip mismatch: got %q want %q", got, p) }
    }
}

func TestSealNeverRepeats(t *testing.T) {
    c := New("secret1", 1024, Padding{Min: 4, Max: 64})
    p := []byte("same payload")
    l1, err := c.Seal(p)
    if err != nil { t.Fatalf("seal: %v", err) }
    l2, err := c.Seal(p)
    if err != nil { t.Fatalf("seal: %v", err) }
    if bytes.Equal(l1, l2) { t.Fatalf("two seals of identical payload produced identical lines") }
    for _, l := range [][]byte{l1, l2} {
        got, err := c.Open(l)
        if err != nil { t.Fatalf("open: %v", err) }
        if !bytes.Equal(got, p) { t.Fatalf("payload mismatch after open") }
    }
}

func TestOpenWrongPassphrase(t *testing.T) {
    c := New("secret1", 1024, Padding{Min: 4, Max: 64})
    line, err := c.Seal([]byte("whoami\n"))
    if err != nil { t.Fatalf("seal: %v", err) }
    other := New("secret2", 1024, Padding{Min: 4, Max: 64})
    if _, err := other.Open(line); !errors.Is(err, ErrDecrypt) {
        t.Fatalf("want ErrDecrypt for wrong passphrase, got %v", err)
    }
}

func TestOpenDetectsTampering(t *testing.T) {
    c := New("secret1", 1024, Padding{Min: 4, Max: 64})
    line, err := c.Seal([]byte("whoami\n"))
    if err != nil { t.Fatalf("seal: %v", err) }

    b, err := DecodeLine(line)
    if err != nil { t.Fatalf("decode: %v", err) }

    flip := func(mut func(b *Bundle)) []byte {
        cp := *b
        cp.Ciphertext = append([]byte(nil), b.Ciphertext...)
        cp.Tag = append([]byte(nil), b.Tag...)
        mut(&cp)
        out, err := cp.EncodeLine()
        if err != nil { t.Fatalf("re-encode: %v", err) }
        return out
    }

    mutated := flip(func(b *Bundle) { b.Ciphertext[0] ^= 0x01 })
    if _, err := c.Open(mutated); !errors.Is(err, ErrDecrypt) {
        t.Fatalf("ciphertext flip: want ErrDecrypt, got %v", err)
    }
    mutated = flip(func(b *Bundle) { b.Tag[len(b.Tag)-1] ^= 0x80 })
    if _, err := c.Open(mutated); !errors.Is(err, ErrDecrypt) {
        t.Fatalf("tag flip: want ErrDecrypt, got %v", err)
    }
}

func TestOpenMalformedInput(t *testing.T) {
    c := New("secret1", 1024, Padding{Min: 0, Max: 8})
    for _, bad := range [][]byte{
        []byte("not base64 !!!"),
        []byte("AAAA"), // valid base64, not CBOR
        {},
    } {
        if _, err := c.Open(bad); !errors.Is(err, ErrDecode) {
            t.Fatalf("open(%q): want ErrDecode, got %v", bad, err)
        }
    }
}

func TestLineIsNewlineFree(t *testing.T) {
    c := New("secret1", 1024, Padding{Min: 64, Max: 256})
    for i := 0; i < 16; i++ {
        line, err := c.Seal([]byte("payload with\nnewlines\r\n"))
        if err != nil { t.Fatalf("seal: %v", err) }
        if bytes.ContainsAny(line, "\r\n") {
            t.Fatalf("encoded line contains a line break")
        }
    }
}

func TestPaddingBounds(t *testing.T) {
    pad := Padding{Min: 10, Max: 20}
    seenDifferent := false
    var prevHead int
    for i := 0; i < 64; i++ {
        env, err := wrap([]byte("p"), pad)
        if err != nil { t.Fatalf("wrap: %v", err) }
        h, tl := len(env.DecoyHead), len(env.DecoyTail)
        if h < pad.Min || h > pad.Max { t.Fatalf("head decoy %d outside [%d,%d]", h, pad.Min, pad.Max) }
        if tl < pad.Min || tl > pad.Max { t.Fatalf("tail decoy %d outside [%d,%d]", tl, pad.Min, pad.Max) }
        if i > 0 && h != prevHead { seenDifferent = true }
        prevHead = h
    }
    if !seenDifferent { t.Fatalf("decoy length constant across 64 draws") }
}

func TestPaddingInvalidBounds(t *testing.T) {
    if _, err := wrap([]byte("p"), Padding{Min: 10, Max: 4}); err == nil {
        t.Fatalf("want error for max < min")
    }
    if _, err := wrap([]byte("p"), Padding{Min: -1, Max: 4}); err == nil {
        t.Fatalf("want error for negative min")
    }
}
