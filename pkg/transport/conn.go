package transport

import (
    "bufio"
    "bytes"
    "errors"
    "io"
    "net"
    "sync"
    "sync/atomic"
)

// maxLine guards against absurd records on the line-oriented path.
const maxLine = 1 << 24

// ErrLineTooLong is returned when a peer sends a record above maxLine.
var ErrLineTooLong = errors.New("transport: line exceeds maximum record size")

// connChannel adapts any stream connection to the Channel interface and
// tracks liveness: the connected flag drops on the first I/O failure or on
// Close, which is what the supervisor's poll observes.
type connChannel struct {
    wmu   sync.Mutex
    kind  Kind
    c     io.ReadWriteCloser
    laddr net.Addr
    raddr net.Addr
    br    *bufio.Reader
    bw    *bufio.Writer
    alive atomic.Bool
}

// NewChannel wraps a stream connection. laddr/raddr may come from a
// net.Conn or be synthetic for transports without real addresses.
func NewChannel(kind Kind, c io.ReadWriteCloser, laddr, raddr net.Addr) Channel {
    ch := &connChannel{
        kind:  kind,
        c:     c,
        laddr: laddr,
        raddr: raddr,
        br:    bufio.NewReader(c),
        bw:    bufio.NewWriter(c),
    }
    ch.alive.Store(true)
    return ch
}

// NewNetChannel wraps a net.Conn using its own addresses.
func NewNetChannel(kind Kind, c net.Conn) Channel {
    return NewChannel(kind, c, c.LocalAddr(), c.RemoteAddr())
}

func (ch *connChannel) WriteLine(rec []byte) error {
    ch.wmu.Lock()
    defer ch.wmu.Unlock()
    if _, err := ch.bw.Write(rec); err != nil { return ch.fail(err) }
    if err := ch.bw.WriteByte('\n'); err != nil { return ch.fail(err) }
    if err := ch.bw.Flush(); err != nil { return ch.fail(err) }
    return nil
}

func (ch *connChannel) ReadLine() ([]byte, error) {
    // Accumulate in buffer-sized fragments so an unterminated record is
    // rejected as soon as it crosses maxLine, not after it fully arrives.
    var rec []byte
    for {
        frag, err := ch.br.ReadSlice('\n')
        rec = append(rec, frag...)
        if len(rec) > maxLine { return nil, ch.fail(ErrLineTooLong) }
        if err == nil { break }
        if errors.Is(err, bufio.ErrBufferFull) { continue }
        if len(rec) == 0 { return nil, ch.fail(err) }
        // final unterminated record before EOF is still delivered
        break
    }
    rec = bytes.TrimRight(rec, "\r\n")
    return rec, nil
}

func (ch *connChannel) Write(p []byte) error {
    ch.wmu.Lock()
    defer ch.wmu.Unlock()
    if _, err := ch.bw.Write(p); err != nil { return ch.fail(err) }
    if err := ch.bw.Flush(); err != nil { return ch.fail(err) }
    return nil
}

func (ch *connChannel) Read(p []byte) (int, error) {
    n, err := ch.br.Read(p)
    if err != nil && n == 0 { return 0, ch.fail(err) }
    return n, nil
}

func (ch *connChannel) Connected() bool { return ch.alive.Load() }

func (ch *connChannel) LocalAddr() net.Addr  { return ch.laddr }
func (ch *connChannel) RemoteAddr() net.Addr { return ch.raddr }

func (ch *connChannel) Close() error {
    ch.alive.Store(false)
    return ch.c.Close()
}

func (ch *connChannel) fail(err error) error {
    ch.alive.Store(false)
    return err
}
