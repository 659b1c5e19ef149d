//go:build !windows

package host

import (
    "fmt"
    "os/exec"
    "os/user"
    "strconv"
    "syscall"
)

// applyCredentials switches the child to the target account's uid/gid.
// The password is not consulted here: dropping privileges on unix requires
// the server itself to run with sufficient rights, not the target password.
func applyCredentials(cmd *exec.Cmd, creds *Credentials) error {
    u, err := user.Lookup(creds.User)
    if err != nil {
        return fmt.Errorf("lookup user %q: %w", creds.User, err)
    }
    uid, err := strconv.ParseUint(u.Uid, 10, 32)
    if err != nil {
        return fmt.Errorf("parse uid %q: %w", u.Uid, err)
    }
    gid, err := strconv.ParseUint(u.Gid, 10, 32)
    if err != nil {
        return fmt.Errorf("parse gid %q: %w", u.Gid, err)
    }
    cmd.SysProcAttr = &syscall.SysProcAttr{
        Credential: &syscall.Credential{Uid: uint32(uid), Gid: uint32(gid)},
    }
    return nil
}
