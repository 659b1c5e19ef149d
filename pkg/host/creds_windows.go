//go:build windows

package host

import (
    "errors"
    "os/exec"
)

// applyCredentials would need CreateProcessWithLogonW, which os/exec does
// not expose. Run the server under the desired account instead.
func applyCredentials(cmd *exec.Cmd, creds *Credentials) error {
    return errors.New("alternate-identity launch is not supported on windows")
}
