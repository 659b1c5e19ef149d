package supervisor

import (
    "bufio"
    "context"
    "fmt"
    "io"
    "strings"
    "time"

    "go.uber.org/zap"

    "pipeshell/pkg/config"
    "pipeshell/pkg/packet"
    "pipeshell/pkg/relay"
    "pipeshell/pkg/transport"
)

// Client runs a single interactive session and exits: the inbound pump
// renders remote output, a scanner goroutine collects local commands, and
// Run multiplexes them against shutdown and remote hangup.
type Client struct {
    cfg *config.Config
    tr  transport.Transport

    // In/Out default to the process stdio; tests substitute buffers.
    In  io.Reader
    Out io.Writer
}

func NewClient(cfg *config.Config, tr transport.Transport, in io.Reader, out io.Writer) *Client {
    return &Client{cfg: cfg, tr: tr, In: in, Out: out}
}

// Run connects, relays until local end-of-input or the exit command, then
// tears the session down.
func (c *Client) Run(ctx context.Context) error {
    ch, err := c.tr.Dial(ctx, c.cfg.Channel.Endpoint, c.cfg.Channel.Name)
    if err != nil {
        return fmt.Errorf("connect %s %q: %w", c.tr.Kind(), c.cfg.Channel.Name, err)
    }
    zap.L().Info("connected", zap.String("raddr", ch.RemoteAddr().String()), zap.Bool("encrypted", c.cfg.Crypto.Passphrase != ""))

    codec := c.codec()
    r := relay.New(ch, codec, c.cfg.Session.ChunkBytes)
    r.StartInbound(c.Out)

    // local input runs on its own goroutine so remote hangup is noticed
    // immediately instead of after the next keystroke
    lines := make(chan string)
    scanErr := make(chan error, 1)
    go func() {
        scanner := bufio.NewScanner(c.In)
        for scanner.Scan() {
            select {
            case lines <- scanner.Text():
            case <-r.Done():
                return
            }
        }
        scanErr <- scanner.Err()
        close(lines)
    }()

loop:
    for {
        select {
        case <-ctx.Done():
            break loop
        case <-r.Done():
            zap.L().Info("remote side hung up")
            break loop
        case cmd, ok := <-lines:
            if !ok {
                break loop
            }
            if err := c.send(ch, codec, []byte(cmd+"\n")); err != nil {
                zap.L().Warn("send failed", zap.Error(err))
                break loop
            }
            if strings.EqualFold(strings.TrimSpace(cmd), "exit") {
                // give the remote side a moment to process the command
                time.Sleep(time.Duration(c.cfg.Session.ExitGraceMS) * time.Millisecond)
                break loop
            }
        }
    }

    _ = ch.Close()
    <-r.Done()
    zap.L().Info("disconnected")
    select {
    case err := <-scanErr:
        return err
    default:
        return nil
    }
}

func (c *Client) send(ch transport.Channel, codec *packet.Codec, unit []byte) error {
    if codec == nil {
        return ch.Write(unit)
    }
    line, err := codec.Seal(unit)
    if err != nil {
        return err
    }
    return ch.WriteLine(line)
}

func (c *Client) codec() *packet.Codec {
    if c.cfg.Crypto.Passphrase == "" {
        return nil
    }
    return packet.New(c.cfg.Crypto.Passphrase, c.cfg.Crypto.Iterations, packet.Padding{Min: c.cfg.Crypto.PaddingMin, Max: c.cfg.Crypto.PaddingMax})
}
