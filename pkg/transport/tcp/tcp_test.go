package tcp

import (
    "context"
    "testing"
)

func TestListenDialRoundTrip(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    tr := New()
    l, err := tr.Listen(ctx, "127.0.0.1:0")
    if err != nil { t.Fatalf("listen: %v", err) }
    defer l.Close()

    cli, err := tr.Dial(ctx, "", l.Addr().String())
    if err != nil { t.Fatalf("dial: %v", err) }
    defer cli.Close()

    srv, err := l.Accept(ctx)
    if err != nil { t.Fatalf("accept: %v", err) }
    defer srv.Close()

    go func() { _ = cli.WriteLine([]byte("ping")) }()
    got, err := srv.ReadLine()
    if err != nil { t.Fatalf("read: %v", err) }
    if string(got) != "ping" { t.Fatalf("got %q", got) }

    go func() { _ = srv.WriteLine([]byte("pong")) }()
    got, err = cli.ReadLine()
    if err != nil { t.Fatalf("read reply: %v", err) }
    if string(got) != "pong" { t.Fatalf("got %q", got) }
}

func TestDialRefusedWithoutListener(t *testing.T) {
    tr := New()
    if _, err := tr.Dial(context.Background(), "127.0.0.1", ":1"); err == nil {
        t.Fatalf("dial to a closed port should fail")
    }
}

func TestJoinAddr(t *testing.T) {
    cases := []struct {
        endpoint, name, want string
    }{
        {"", ":7890", "127.0.0.1:7890"},
        {"10.0.0.5", ":7890", "10.0.0.5:7890"},
        {"example.org", ":22", "example.org:22"},
        {"", "192.168.1.2:9000", "192.168.1.2:9000"},
        {"ignored", "192.168.1.2:9000", "192.168.1.2:9000"},
    }
    for _, c := range cases {
        if got := joinAddr(c.endpoint, c.name); got != c.want {
            t.Fatalf("joinAddr(%q, %q) = %q, want %q", c.endpoint, c.name, got, c.want)
        }
    }
}
