package quic

import (
    "context"
    "crypto/rand"
    "crypto/rsa"
    "crypto/tls"
    "crypto/x509"
    "errors"
    "io"
    "math/big"
    "net"
    "strings"
    "sync"
    "time"

    quicgo "github.com/quic-go/quic-go"

    "pipeshell/pkg/transport"
)

const (
    alpn     = "pipeshell"
    preamble = 0x00
)

// Transport carries the duplex channel over a single QUIC bidirectional
// stream per connection.
type Transport struct {
    quicConf *quicgo.Config

    mu      sync.Mutex
    tlsConf *tls.Config // listener side, built on first Listen
}

func New() *Transport { return &Transport{quicConf: &quicgo.Config{}} }

func (t *Transport) Kind() transport.Kind { return transport.KindQUIC }

// serverTLS builds the listener TLS config on first use so dial-only
// clients never pay for key generation. The certificate is ephemeral and
// self-signed; the channel protocol authenticates peers via the shared
// passphrase, not TLS.
func (t *Transport) serverTLS() (*tls.Config, error) {
    t.mu.Lock()
    defer t.mu.Unlock()
    if t.tlsConf != nil {
        return t.tlsConf, nil
    }
    cert, err := selfSignedCert()
    if err != nil {
        return nil, err
    }
    t.tlsConf = &tls.Config{
        Certificates: []tls.Certificate{cert},
        NextProtos:   []string{alpn},
        MinVersion:   tls.VersionTLS13,
    }
    return t.tlsConf, nil
}

func (t *Transport) Listen(ctx context.Context, name string) (transport.Listener, error) {
    tlsConf, err := t.serverTLS()
    if err != nil { return nil, err }
    l, err := quicgo.ListenAddr(name, tlsConf, t.quicConf)
    if err != nil { return nil, err }
    ql := &listener{l: l, newCh: make(chan transport.Channel, 1), closeCh: make(chan struct{})}
    go ql.acceptLoop(ctx)
    go func() { <-ctx.Done(); _ = ql.Close() }()
    return ql, nil
}

func (t *Transport) Dial(ctx context.Context, endpoint, name string) (transport.Channel, error) {
    tlsClient := &tls.Config{
        InsecureSkipVerify: true, // the passphrase protocol is the trust anchor
        NextProtos:         []string{alpn},
        MinVersion:         tls.VersionTLS13,
    }
    c, err := quicgo.DialAddr(ctx, joinAddr(endpoint, name), tlsClient, t.quicConf)
    if err != nil { return nil, err }
    st, err := c.OpenStreamSync(ctx)
    if err != nil {
        _ = c.CloseWithError(0, "")
        return nil, err
    }
    // The peer only learns of the stream once it carries data; nudge it
    // with a preamble byte the listener strips.
    if _, err := st.Write([]byte{preamble}); err != nil {
        _ = c.CloseWithError(0, "")
        return nil, err
    }
    return transport.NewChannel(transport.KindQUIC, &streamConn{c: c, st: st}, c.LocalAddr(), c.RemoteAddr()), nil
}

func joinAddr(endpoint, name string) string {
    if strings.Contains(name, ":") && !strings.HasPrefix(name, ":") {
        return name
    }
    port := strings.TrimPrefix(name, ":")
    if endpoint == "" {
        endpoint = "127.0.0.1"
    }
    return net.JoinHostPort(endpoint, port)
}

type listener struct {
    l       *quicgo.Listener
    newCh   chan transport.Channel
    closeCh chan struct{}
}

func (l *listener) Addr() net.Addr { return l.l.Addr() }

func (l *listener) Accept(ctx context.Context) (transport.Channel, error) {
    select {
    case <-ctx.Done():
        return nil, ctx.Err()
    case <-l.closeCh:
        return nil, errors.New("quic listener closed")
    case ch := <-l.newCh:
        return ch, nil
    }
}

func (l *listener) Close() error {
    select { case <-l.closeCh: default: close(l.closeCh) }
    return l.l.Close()
}

func (l *listener) acceptLoop(ctx context.Context) {
    for {
        c, err := l.l.Accept(ctx)
        if err != nil { return }
        st, err := c.AcceptStream(ctx)
        if err != nil {
            _ = c.CloseWithError(0, "")
            continue
        }
        var nudge [1]byte
        if _, err := io.ReadFull(st, nudge[:]); err != nil {
            _ = c.CloseWithError(0, "")
            continue
        }
        ch := transport.NewChannel(transport.KindQUIC, &streamConn{c: c, st: st}, c.LocalAddr(), c.RemoteAddr())
        select { case l.newCh <- ch: default: _ = ch.Close() }
    }
}

// streamConn binds a QUIC stream's lifetime to its connection so that
// closing the channel tears down the whole connection.
type streamConn struct {
    c  *quicgo.Conn
    st *quicgo.Stream
}

func (s *streamConn) Read(p []byte) (int, error)  { return s.st.Read(p) }
func (s *streamConn) Write(p []byte) (int, error) { return s.st.Write(p) }

func (s *streamConn) Close() error {
    _ = s.st.Close()
    return s.c.CloseWithError(0, "")
}

var _ io.ReadWriteCloser = (*streamConn)(nil)

// selfSignedCert generates a short-lived self-signed TLS certificate for
// the listening side.
func selfSignedCert() (tls.Certificate, error) {
    priv, err := rsa.GenerateKey(rand.Reader, 2048)
    if err != nil { return tls.Certificate{}, err }
    tmpl := x509.Certificate{
        SerialNumber:          big.NewInt(time.Now().UnixNano()),
        NotBefore:             time.Now().Add(-time.Minute),
        NotAfter:              time.Now().Add(24 * time.Hour),
        KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
        ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
        BasicConstraintsValid: true,
        DNSNames:              []string{"localhost"},
    }
    der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
    if err != nil { return tls.Certificate{}, err }
    return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}
