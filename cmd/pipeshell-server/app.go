package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"

    "go.uber.org/zap"

    "pipeshell/pkg/config"
    "pipeshell/pkg/observability"
    "pipeshell/pkg/supervisor"
    "pipeshell/pkg/transport/factory"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
    cfg, err := config.Load(opts.ConfigPath)
    if err != nil {
        _, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
        return 1
    }
    applyOverrides(cfg, opts)

    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil {
        _, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
        return 1
    }
    defer func() { _ = logger.Sync() }()

    zap.L().Info("pipeshell-server started", zap.String("app", cfg.AppName))

    tr, err := factory.NewByKind(cfg.Channel.Kind)
    if err != nil {
        zap.L().Error("transport setup failed", zap.Error(err))
        return 1
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    if err := supervisor.NewServer(cfg, tr).Run(ctx); err != nil {
        zap.L().Error("server stopped", zap.Error(err))
        return 1
    }
    zap.L().Info("server shut down")
    return 0
}

func applyOverrides(cfg *config.Config, opts Options) {
    if opts.Kind != "" {
        cfg.Channel.Kind = opts.Kind
    }
    if opts.Name != "" {
        cfg.Channel.Name = opts.Name
    }
    if opts.Passphrase != "" {
        cfg.Crypto.Passphrase = opts.Passphrase
    }
    if opts.Command != "" {
        cfg.Host.Command = opts.Command
        cfg.Host.Args = nil
    }
    if opts.RunAsUser != "" {
        cfg.Host.RunAs.User = opts.RunAsUser
        cfg.Host.RunAs.Domain = opts.RunAsDom
        cfg.Host.RunAs.Password = opts.RunAsPass
    }
}
