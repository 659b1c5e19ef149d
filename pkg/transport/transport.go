package transport

import (
    "context"
    "net"
)

// Kind identifies the link type carrying a channel.
type Kind int

const (
    KindUnknown Kind = iota
    KindTCP
    KindQUIC
    KindWinPipe
    KindMem
)

func (k Kind) String() string {
    switch k {
    case KindTCP:
        return "tcp"
    case KindQUIC:
        return "quic"
    case KindWinPipe:
        return "winpipe"
    case KindMem:
        return "mem"
    default:
        return "unknown"
    }
}

// Channel is a duplex reliable ordered byte stream to one peer.
// Exactly one reader and one writer goroutine are expected.
type Channel interface {
    // WriteLine sends one newline-terminated record.
    WriteLine([]byte) error
    // ReadLine blocks for the next record and returns it without the
    // trailing newline.
    ReadLine() ([]byte, error)
    // Write sends raw bytes (plaintext relay mode).
    Write([]byte) error
    // Read fills p with raw bytes and returns the count.
    Read(p []byte) (int, error)
    // Connected reports whether the channel is still usable. It flips to
    // false after any I/O failure or Close and is sampled by the
    // supervisor's liveness poll.
    Connected() bool
    LocalAddr() net.Addr
    RemoteAddr() net.Addr
    Close() error
}

// Listener accepts inbound channels on a named local endpoint.
type Listener interface {
    // Accept blocks until a peer connects or ctx is done.
    Accept(ctx context.Context) (Channel, error)
    // Addr returns the local listening address.
    Addr() net.Addr
    // Close stops the listener and unblocks Accept.
    Close() error
}

// Transport provides dialing/listening for a specific link kind.
type Transport interface {
    Kind() Kind
    // Listen starts accepting inbound channels on the named local endpoint
    // (transport-specific format).
    Listen(ctx context.Context, name string) (Listener, error)
    // Dial connects to the channel `name` on the remote `endpoint`; an
    // empty endpoint means the local machine.
    Dial(ctx context.Context, endpoint, name string) (Channel, error)
}
