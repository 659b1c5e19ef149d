package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "syscall"

    "pipeshell/pkg/config"
    "pipeshell/pkg/observability"
    "pipeshell/pkg/supervisor"
    "pipeshell/pkg/transport/factory"
)

func main() {
    configPath := flag.String("config", "", "path to YAML config file")
    kind := flag.String("kind", "", "transport kind: tcp|quic|winpipe|mem")
    name := flag.String("name", "", "channel name (pipe name or address)")
    endpoint := flag.String("endpoint", "", "remote endpoint; empty targets the local machine")
    passphrase := flag.String("passphrase", "", "shared passphrase; empty disables encryption")
    flag.Parse()

    cfg, err := config.Load(*configPath)
    if err != nil {
        fatalf("load config: %v", err)
    }
    if *kind != "" {
        cfg.Channel.Kind = *kind
    }
    if *name != "" {
        cfg.Channel.Name = *name
    }
    if *endpoint != "" {
        cfg.Channel.Endpoint = *endpoint
    }
    if *passphrase != "" {
        cfg.Crypto.Passphrase = *passphrase
    }

    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil {
        fatalf("setup logger: %v", err)
    }
    defer logger.Sync()

    tr, err := factory.NewByKind(cfg.Channel.Kind)
    if err != nil {
        fatalf("transport: %v", err)
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    cli := supervisor.NewClient(cfg, tr, os.Stdin, os.Stdout)
    if err := cli.Run(ctx); err != nil {
        fatalf("session: %v", err)
    }
}

func fatalf(format string, a ...any) {
    _, _ = fmt.Fprintf(os.Stderr, format+"\n", a...)
    os.Exit(1)
}
