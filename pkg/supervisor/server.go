// Package supervisor owns the connection lifecycle for both roles: the
// server's spawn/accept/relay/teardown loop and the client's single
// interactive session.
package supervisor

import (
    "context"
    "fmt"
    "time"

    "go.uber.org/zap"

    "pipeshell/pkg/config"
    "pipeshell/pkg/host"
    "pipeshell/pkg/packet"
    "pipeshell/pkg/relay"
    "pipeshell/pkg/transport"
)

// Server serves one peer at a time, sequentially: each accepted peer gets a
// fresh command host and relay, and teardown loops back to waiting.
type Server struct {
    cfg *config.Config
    tr  transport.Transport
}

func NewServer(cfg *config.Config, tr transport.Transport) *Server {
    return &Server{cfg: cfg, tr: tr}
}

// Run blocks serving sessions until ctx is done. It returns an error only
// for conditions fatal to the whole server: listen failure or a command
// host that cannot be spawned.
func (s *Server) Run(ctx context.Context) error {
    ln, err := s.tr.Listen(ctx, s.cfg.Channel.Name)
    if err != nil {
        return fmt.Errorf("listen %s %q: %w", s.tr.Kind(), s.cfg.Channel.Name, err)
    }
    defer ln.Close()
    zap.L().Info("server listening", zap.String("kind", s.tr.Kind().String()), zap.String("name", s.cfg.Channel.Name), zap.Bool("encrypted", s.cfg.Crypto.Passphrase != ""))

    for {
        if ctx.Err() != nil {
            return nil
        }

        h, err := host.Spawn(s.cfg.Host.Command, s.cfg.Host.Args, runAs(s.cfg))
        if err != nil {
            // no retry: a host that cannot spawn now will not spawn later
            zap.L().Error("command host spawn failed", zap.String("command", s.cfg.Host.Command), zap.Error(err))
            return err
        }
        zap.L().Info("command host spawned", zap.String("command", s.cfg.Host.Command), zap.Int("pid", h.Pid()))

        zap.L().Info("waiting for peer")
        ch, err := ln.Accept(ctx)
        if err != nil {
            h.Kill()
            if ctx.Err() != nil {
                return nil
            }
            return fmt.Errorf("accept: %w", err)
        }
        zap.L().Info("peer connected", zap.String("raddr", ch.RemoteAddr().String()))

        r := relay.New(ch, s.codec(), s.cfg.Session.ChunkBytes)
        r.Start(h.Output(), h.Stdin())

        reason := s.poll(ctx, ch, h, r)

        h.Kill()
        _ = ch.Close()
        <-r.Done()
        if err := r.Err(); err != nil {
            zap.L().Warn("session ended", zap.String("reason", reason), zap.Error(err))
        } else {
            zap.L().Info("session ended", zap.String("reason", reason))
        }
    }
}

// poll samples session health until something gives: peer disconnect, host
// exit, both pumps done, or shutdown. Detection latency is bounded by the
// poll interval.
func (s *Server) poll(ctx context.Context, ch transport.Channel, h *host.Host, r *relay.Relay) string {
    interval := time.Duration(s.cfg.Session.PollIntervalMS) * time.Millisecond
    t := time.NewTicker(interval)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            return "shutdown"
        case <-r.Done():
            return "pumps finished"
        case <-t.C:
            if !ch.Connected() {
                return "peer disconnected"
            }
            if !h.Running() {
                zap.L().Info("command host exited", zap.Int("code", h.ExitCode()))
                return "host exited"
            }
        }
    }
}

func (s *Server) codec() *packet.Codec {
    if s.cfg.Crypto.Passphrase == "" {
        return nil
    }
    return packet.New(s.cfg.Crypto.Passphrase, s.cfg.Crypto.Iterations, packet.Padding{Min: s.cfg.Crypto.PaddingMin, Max: s.cfg.Crypto.PaddingMax})
}

func runAs(cfg *config.Config) *host.Credentials {
    if cfg.Host.RunAs.User == "" {
        return nil
    }
    return &host.Credentials{
        User:     cfg.Host.RunAs.User,
        Domain:   cfg.Host.RunAs.Domain,
        Password: cfg.Host.RunAs.Password,
    }
}
