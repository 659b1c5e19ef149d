//go:build !windows

package host

import (
    "bufio"
    "io"
    "strings"
    "testing"
    "time"
)

func TestSpawnEchoRoundTrip(t *testing.T) {
    h, err := Spawn("cat", nil, nil)
    if err != nil { t.Fatalf("spawn: %v", err) }
    defer h.Kill()

    if !h.Running() { t.Fatalf("freshly spawned host not running") }

    if _, err := io.WriteString(h.Stdin(), "hello host\n"); err != nil {
        t.Fatalf("write stdin: %v", err)
    }
    line, err := bufio.NewReader(h.Output()).ReadString('\n')
    if err != nil { t.Fatalf("read output: %v", err) }
    if strings.TrimSpace(line) != "hello host" { t.Fatalf("got %q", line) }
}

func TestOutputEOFAfterExit(t *testing.T) {
    h, err := Spawn("true", nil, nil)
    if err != nil { t.Fatalf("spawn: %v", err) }
    defer h.Kill()

    select {
    case <-h.Done():
    case <-time.After(5 * time.Second):
        t.Fatalf("host did not exit")
    }
    if h.Running() { t.Fatalf("exited host still reports running") }
    if _, err := io.ReadAll(h.Output()); err != nil {
        t.Fatalf("drain output: %v", err)
    }
}

func TestKillUnblocksAndReportsExit(t *testing.T) {
    h, err := Spawn("sleep", []string{"60"}, nil)
    if err != nil { t.Fatalf("spawn: %v", err) }

    h.Kill()
    select {
    case <-h.Done():
    case <-time.After(5 * time.Second):
        t.Fatalf("killed host did not report exit")
    }
    if h.Running() { t.Fatalf("killed host still reports running") }
}

func TestSpawnFailure(t *testing.T) {
    if _, err := Spawn("/nonexistent/command-host", nil, nil); err == nil {
        t.Fatalf("spawn of missing binary should fail")
    }
}
