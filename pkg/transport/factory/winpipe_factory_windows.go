//go:build windows

package factory

import (
    "pipeshell/pkg/transport"
    "pipeshell/pkg/transport/winpipe"
)

func newWinPipeTransport() (transport.Transport, error) { return winpipe.New(), nil }
