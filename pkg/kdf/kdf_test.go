package kdf

import (
    "bytes"
    "testing"
)

func TestDeriveDeterministic(t *testing.T) {
    k1, salt, err := Derive("secret1", nil, 0)
    if err != nil { t.Fatalf("derive: %v", err) }
    if len(k1) != KeySize { t.Fatalf("key size %d, want %d", len(k1), KeySize) }
    if len(salt) != SaltSize { t.Fatalf("salt size %d, want %d", len(salt), SaltSize) }

    k2, salt2, err := Derive("secret1", salt, 0)
    if err != nil { t.Fatalf("rederive: %v", err) }
    if !bytes.Equal(salt, salt2) { t.Fatalf("supplied salt was replaced") }
    if !bytes.Equal(k1, k2) { t.Fatalf("same passphrase+salt produced different keys") }
}

func TestDeriveFreshSaltPerCall(t *testing.T) {
    k1, s1, err := Derive("secret1", nil, 0)
    if err != nil { t.Fatalf("derive: %v", err) }
    k2, s2, err := Derive("secret1", nil, 0)
    if err != nil { t.Fatalf("derive: %v", err) }
    if bytes.Equal(s1, s2) { t.Fatalf("two nil-salt calls reused a salt") }
    if bytes.Equal(k1, k2) { t.Fatalf("fresh salts produced identical keys") }
}

func TestDerivePassphraseMatters(t *testing.T) {
    _, salt, err := Derive("secret1", nil, 0)
    if err != nil { t.Fatalf("derive: %v", err) }
    k1, _, _ := Derive("secret1", salt, 0)
    k2, _, _ := Derive("secret2", salt, 0)
    if bytes.Equal(k1, k2) { t.Fatalf("different passphrases produced identical keys") }
}

func TestDeriveIterationsMatter(t *testing.T) {
    _, salt, _ := Derive("secret1", nil, 0)
    k1, _, _ := Derive("secret1", salt, 1024)
    k2, _, _ := Derive("secret1", salt, 2048)
    if bytes.Equal(k1, k2) { t.Fatalf("different iteration counts produced identical keys") }
}
