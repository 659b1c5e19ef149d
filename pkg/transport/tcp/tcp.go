package tcp

import (
    "context"
    "errors"
    "net"
    "strings"

    "pipeshell/pkg/transport"
)

// Transport implements the duplex channel over TCP.
type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindTCP }

func (t *Transport) Listen(ctx context.Context, name string) (transport.Listener, error) {
    l, err := net.Listen("tcp", name)
    if err != nil { return nil, err }
    tl := &listener{l: l, newCh: make(chan transport.Channel, 1), closeCh: make(chan struct{})}
    go tl.acceptLoop()
    go func() { <-ctx.Done(); _ = tl.Close() }()
    return tl, nil
}

func (t *Transport) Dial(ctx context.Context, endpoint, name string) (transport.Channel, error) {
    d := &net.Dialer{}
    c, err := d.DialContext(ctx, "tcp", joinAddr(endpoint, name))
    if err != nil { return nil, err }
    return transport.NewNetChannel(transport.KindTCP, c), nil
}

// joinAddr combines a remote endpoint with a channel name of the form
// ":port". An empty endpoint targets the local machine.
func joinAddr(endpoint, name string) string {
    if strings.Contains(name, ":") && !strings.HasPrefix(name, ":") {
        return name // name already carries a host
    }
    port := strings.TrimPrefix(name, ":")
    if endpoint == "" {
        endpoint = "127.0.0.1"
    }
    return net.JoinHostPort(endpoint, port)
}

type listener struct {
    l       net.Listener
    newCh   chan transport.Channel
    closeCh chan struct{}
}

func (l *listener) Addr() net.Addr { return l.l.Addr() }

func (l *listener) Accept(ctx context.Context) (transport.Channel, error) {
    select {
    case <-ctx.Done():
        return nil, ctx.Err()
    case <-l.closeCh:
        return nil, errors.New("tcp listener closed")
    case ch := <-l.newCh:
        return ch, nil
    }
}

func (l *listener) Close() error {
    select { case <-l.closeCh: default: close(l.closeCh) }
    return l.l.Close()
}

func (l *listener) acceptLoop() {
    for {
        c, err := l.l.Accept()
        if err != nil { return }
        ch := transport.NewNetChannel(transport.KindTCP, c)
        select { case l.newCh <- ch: default: _ = ch.Close() }
    }
}
