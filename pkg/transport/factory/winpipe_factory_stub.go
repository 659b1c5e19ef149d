//go:build !windows

package factory

import (
    "fmt"

    "pipeshell/pkg/transport"
)

func newWinPipeTransport() (transport.Transport, error) {
    return nil, fmt.Errorf("winpipe transport is not supported on this platform")
}
