// Package relay moves bytes between the command host and the transport
// channel: one outbound pump (host output -> channel) and one inbound pump
// (channel -> host input), each running until its stream ends.
package relay

import (
    "errors"
    "io"
    "net"
    "os"
    "sync"

    "go.uber.org/zap"

    "pipeshell/pkg/packet"
    "pipeshell/pkg/transport"
)

// Relay owns the two pump goroutines for one session. A nil codec runs the
// channel in the clear; otherwise every outbound unit is sealed into one
// line and every inbound line is opened before forwarding.
type Relay struct {
    ch    transport.Channel
    codec *packet.Codec
    chunk int

    wg   sync.WaitGroup
    done chan struct{}

    mu       sync.Mutex
    firstErr error
}

// New prepares a relay over ch. chunk is the outbound read granularity.
func New(ch transport.Channel, codec *packet.Codec, chunk int) *Relay {
    if chunk <= 0 {
        chunk = 1
    }
    return &Relay{ch: ch, codec: codec, chunk: chunk, done: make(chan struct{})}
}

// Start launches both pumps. Call at most once.
func (r *Relay) Start(hostOut io.Reader, hostIn io.Writer) {
    r.wg.Add(2)
    go r.outbound(hostOut)
    go r.inbound(hostIn)
    go r.finish()
}

// StartInbound launches only the inbound pump, for the client role where
// the outbound direction runs on the main goroutine. Call at most once.
func (r *Relay) StartInbound(dst io.Writer) {
    r.wg.Add(1)
    go r.inbound(dst)
    go r.finish()
}

// Done closes once every started pump has returned.
func (r *Relay) Done() <-chan struct{} { return r.done }

// Err reports the first abnormal pump failure, nil for clean end-of-stream
// termination. Meaningful once Done is closed, but safe to call anytime.
func (r *Relay) Err() error {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.firstErr
}

func (r *Relay) finish() {
    r.wg.Wait()
    close(r.done)
}

// outbound reads host output in chunk-sized units and writes them to the
// channel, sealed when encryption is on. Ends on host EOF or write failure.
func (r *Relay) outbound(hostOut io.Reader) {
    defer r.wg.Done()
    buf := make([]byte, r.chunk)
    for {
        n, err := hostOut.Read(buf)
        if n > 0 {
            if werr := r.send(buf[:n]); werr != nil {
                r.record("outbound write", werr)
                return
            }
        }
        if err != nil {
            r.record("outbound read", err)
            return
        }
    }
}

func (r *Relay) send(unit []byte) error {
    if r.codec == nil {
        return r.ch.Write(unit)
    }
    line, err := r.codec.Seal(unit)
    if err != nil {
        return err
    }
    return r.ch.WriteLine(line)
}

// inbound reads transport records and forwards the recovered payloads to
// dst. Records that fail to open are dropped without any visible reaction:
// reporting per-record crypto failures would hand the peer a decryption
// oracle. Ends on transport EOF/error or dst write failure.
func (r *Relay) inbound(dst io.Writer) {
    defer r.wg.Done()
    if r.codec == nil {
        r.inboundRaw(dst)
        return
    }
    for {
        line, err := r.ch.ReadLine()
        if err != nil {
            r.record("inbound read", err)
            return
        }
        payload, err := r.codec.Open(line)
        if err != nil {
            zap.L().Debug("dropped undecryptable record", zap.Int("len", len(line)))
            continue
        }
        if len(payload) == 0 {
            continue
        }
        if _, err := dst.Write(payload); err != nil {
            r.record("inbound write", err)
            return
        }
    }
}

func (r *Relay) inboundRaw(dst io.Writer) {
    buf := make([]byte, 4096)
    for {
        n, err := r.ch.Read(buf)
        if n > 0 {
            if _, werr := dst.Write(buf[:n]); werr != nil {
                r.record("inbound write", werr)
                return
            }
        }
        if err != nil {
            r.record("inbound read", err)
            return
        }
    }
}

// record notes a pump's terminal condition. Clean end-of-stream is a normal
// session end, not a failure.
func (r *Relay) record(op string, err error) {
    if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
        zap.L().Debug("pump finished", zap.String("op", op))
        return
    }
    zap.L().Debug("pump failed", zap.String("op", op), zap.Error(err))
    r.mu.Lock()
    if r.firstErr == nil {
        r.firstErr = err
    }
    r.mu.Unlock()
}
