// Package factory builds transports from config kind names.
package factory

import (
    "fmt"

    "pipeshell/pkg/transport"
    "pipeshell/pkg/transport/mem"
    "pipeshell/pkg/transport/quic"
    "pipeshell/pkg/transport/tcp"
)

// sharedMem lets a listener and dialer in one process find each other.
var sharedMem = mem.New()

// NewByKind returns a transport for a config kind name.
func NewByKind(kind string) (transport.Transport, error) {
    switch kind {
    case "tcp":
        return tcp.New(), nil
    case "quic":
        return quic.New(), nil
    case "mem":
        return sharedMem, nil
    case "winpipe":
        return newWinPipeTransport()
    default:
        return nil, fmt.Errorf("unknown transport kind %q", kind)
    }
}
