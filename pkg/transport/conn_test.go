package transport

import (
    "bytes"
    "errors"
    "net"
    "testing"
)

func TestChannelLineFraming(t *testing.T) {
    a, b := net.Pipe()
    ca := NewChannel(KindMem, a, nil, nil)
    cb := NewChannel(KindMem, b, nil, nil)
    defer ca.Close()
    defer cb.Close()

    done := make(chan error, 1)
    go func() { done <- ca.WriteLine([]byte("record one")) }()
    got, err := cb.ReadLine()
    if err != nil { t.Fatalf("read line: %v", err) }
    if string(got) != "record one" { t.Fatalf("got %q", got) }
    if err := <-done; err != nil { t.Fatalf("write line: %v", err) }

    // CRLF is stripped too
    go func() { done <- ca.Write([]byte("crlf record\r\n")) }()
    got, err = cb.ReadLine()
    if err != nil { t.Fatalf("read crlf line: %v", err) }
    if string(got) != "crlf record" { t.Fatalf("got %q", got) }
    <-done
}

func TestChannelRawAndConnectedFlag(t *testing.T) {
    a, b := net.Pipe()
    ca := NewChannel(KindMem, a, nil, nil)
    cb := NewChannel(KindMem, b, nil, nil)

    if !ca.Connected() || !cb.Connected() { t.Fatalf("fresh channels should be connected") }

    go func() { _ = ca.Write([]byte{'x'}) }()
    buf := make([]byte, 4)
    n, err := cb.Read(buf)
    if err != nil || n != 1 || buf[0] != 'x' { t.Fatalf("raw read: n=%d err=%v", n, err) }

    _ = ca.Close()
    if ca.Connected() { t.Fatalf("closed channel still reports connected") }
    if _, err := cb.ReadLine(); err == nil {
        t.Fatalf("read from closed peer should fail")
    }
    if cb.Connected() { t.Fatalf("peer read failure should drop connected flag") }
}

func TestChannelReadLineCapsUnterminatedRecord(t *testing.T) {
    a, b := net.Pipe()
    ca := NewChannel(KindMem, a, nil, nil)
    cb := NewChannel(KindMem, b, nil, nil)
    defer ca.Close()
    defer cb.Close()

    // a peer streaming past maxLine without ever sending a newline must be
    // rejected mid-stream, not buffered until a delimiter shows up
    go func() {
        chunk := bytes.Repeat([]byte{'A'}, 64*1024)
        for i := 0; i <= maxLine/len(chunk)+1; i++ {
            if err := ca.Write(chunk); err != nil { return }
        }
    }()
    if _, err := cb.ReadLine(); !errors.Is(err, ErrLineTooLong) {
        t.Fatalf("want ErrLineTooLong, got %v", err)
    }
    if cb.Connected() { t.Fatalf("oversized record must drop the connected flag") }
}

func TestChannelFinalUnterminatedRecord(t *testing.T) {
    a, b := net.Pipe()
    ca := NewChannel(KindMem, a, nil, nil)
    cb := NewChannel(KindMem, b, nil, nil)

    go func() {
        _ = ca.Write([]byte("last record without newline"))
        _ = ca.Close()
    }()
    got, err := cb.ReadLine()
    if err != nil { t.Fatalf("final record: %v", err) }
    if !bytes.Equal(got, []byte("last record without newline")) { t.Fatalf("got %q", got) }
    if _, err := cb.ReadLine(); err == nil { t.Fatalf("want EOF after final record") }
}
