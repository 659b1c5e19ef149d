package quic

import "testing"

func TestServerTLSLazyAndCached(t *testing.T) {
    tr := New()
    if tr.tlsConf != nil { t.Fatalf("certificate generated before first Listen") }

    c1, err := tr.serverTLS()
    if err != nil { t.Fatalf("serverTLS: %v", err) }
    if len(c1.Certificates) != 1 { t.Fatalf("listener config carries %d certificates", len(c1.Certificates)) }
    if len(c1.NextProtos) != 1 || c1.NextProtos[0] != alpn {
        t.Fatalf("listener config advertises %v", c1.NextProtos)
    }

    c2, err := tr.serverTLS()
    if err != nil { t.Fatalf("serverTLS again: %v", err) }
    if c1 != c2 { t.Fatalf("listener TLS config rebuilt on second use") }
}

func TestSelfSignedCertUsable(t *testing.T) {
    cert, err := selfSignedCert()
    if err != nil { t.Fatalf("generate: %v", err) }
    if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
        t.Fatalf("generated certificate is incomplete")
    }
}
