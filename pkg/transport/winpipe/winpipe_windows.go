//go:build windows

package winpipe

import (
    "context"
    "errors"
    "net"
    "strings"

    "github.com/Microsoft/go-winio"

    "pipeshell/pkg/transport"
)

// Transport carries the duplex channel over a Windows named pipe.
type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindWinPipe }

func (t *Transport) Listen(ctx context.Context, name string) (transport.Listener, error) {
    l, err := winio.ListenPipe(pipePath("", name), nil)
    if err != nil { return nil, err }
    wl := &listener{l: l, newCh: make(chan transport.Channel, 1), closeCh: make(chan struct{})}
    go wl.acceptLoop()
    go func() { <-ctx.Done(); _ = wl.Close() }()
    return wl, nil
}

func (t *Transport) Dial(ctx context.Context, endpoint, name string) (transport.Channel, error) {
    conn, err := winio.DialPipeContext(ctx, pipePath(endpoint, name))
    if err != nil { return nil, err }
    return transport.NewNetChannel(transport.KindWinPipe, conn), nil
}

// pipePath renders a logical channel name as a pipe path, targeting the
// local machine when endpoint is empty.
func pipePath(endpoint, name string) string {
    if strings.HasPrefix(name, `\\`) {
        return name // already a full pipe path
    }
    host := "."
    if endpoint != "" {
        host = endpoint
    }
    return `\\` + host + `\pipe\` + name
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
        return nil, errors.New("winpipe listener closed")
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
        ch := transport.NewNetChannel(transport.KindWinPipe, c)
        select { case l.newCh <- ch: default: _ = ch.Close() }
    }
}
