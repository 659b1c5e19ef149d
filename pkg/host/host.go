// Package host spawns and tracks the interactive command host process whose
// stdio the relay pipes over the transport.
package host

import (
    "fmt"
    "io"
    "os"
    "os/exec"
    "sync/atomic"
)

// Credentials optionally launch the host under another account.
type Credentials struct {
    User     string
    Domain   string
    Password string
}

func (c *Credentials) empty() bool {
    return c == nil || c.User == ""
}

// Host is one running command host. Stderr is merged into the output
// stream so the peer sees everything the shell prints.
type Host struct {
    cmd    *exec.Cmd
    stdin  io.WriteCloser
    output *os.File

    exited   atomic.Bool
    exitCode atomic.Int32
    done     chan struct{}
}

// Spawn launches the command host and begins tracking its exit status.
func Spawn(command string, args []string, creds *Credentials) (*Host, error) {
    cmd := exec.Command(command, args...)

    if !creds.empty() {
        if err := applyCredentials(cmd, creds); err != nil {
            return nil, fmt.Errorf("apply credentials: %w", err)
        }
    }

    stdin, err := cmd.StdinPipe()
    if err != nil {
        return nil, fmt.Errorf("stdin pipe: %w", err)
    }
    pr, pw, err := os.Pipe()
    if err != nil {
        return nil, fmt.Errorf("output pipe: %w", err)
    }
    cmd.Stdout = pw
    cmd.Stderr = pw

    if err := cmd.Start(); err != nil {
        _ = pr.Close()
        _ = pw.Close()
        return nil, fmt.Errorf("start %s: %w", command, err)
    }
    // The child holds its own copy; closing ours lets the reader see EOF
    // when the host exits.
    _ = pw.Close()

    h := &Host{cmd: cmd, stdin: stdin, output: pr, done: make(chan struct{})}
    go h.track()
    return h, nil
}

func (h *Host) track() {
    err := h.cmd.Wait()
    code := 0
    if ee, ok := err.(*exec.ExitError); ok {
        code = ee.ExitCode()
    } else if err != nil {
        code = -1
    }
    h.exitCode.Store(int32(code))
    h.exited.Store(true)
    close(h.done)
}

// Stdin is the host's input stream.
func (h *Host) Stdin() io.WriteCloser { return h.stdin }

// Output is the host's merged stdout+stderr stream; it reaches EOF once
// the host exits.
func (h *Host) Output() io.Reader { return h.output }

// Running reports whether the host process is still alive.
func (h *Host) Running() bool { return !h.exited.Load() }

// ExitCode is valid once Running reports false.
func (h *Host) ExitCode() int { return int(h.exitCode.Load()) }

// Done closes when the host has exited.
func (h *Host) Done() <-chan struct{} { return h.done }

// Kill force-terminates the host and releases its stdio. Safe to call on an
// already-dead host.
func (h *Host) Kill() {
    if h.Running() {
        _ = h.cmd.Process.Kill()
    }
    _ = h.stdin.Close()
    _ = h.output.Close()
}

// Pid returns the host process id.
func (h *Host) Pid() int { return h.cmd.Process.Pid }
