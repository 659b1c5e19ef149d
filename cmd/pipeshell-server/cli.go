package main

import "flag"

// Options holds CLI options for the server.
type Options struct {
    ConfigPath string
    Kind       string
    Name       string
    Passphrase string
    Command    string
    RunAsUser  string
    RunAsDom   string
    RunAsPass  string
}

// ParseFlags parses CLI flags from args and returns Options. Non-empty
// flags override the loaded configuration.
func ParseFlags(args []string) Options {
    fs := flag.NewFlagSet("pipeshell-server", flag.ExitOnError)
    var opts Options
    fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
    fs.StringVar(&opts.Kind, "kind", "", "Transport kind: tcp|quic|winpipe|mem")
    fs.StringVar(&opts.Name, "name", "", "Channel name (pipe name or listen address)")
    fs.StringVar(&opts.Passphrase, "passphrase", "", "Shared passphrase; empty disables encryption")
    fs.StringVar(&opts.Command, "command", "", "Command host binary to spawn")
    fs.StringVar(&opts.RunAsUser, "user", "", "Launch the command host as this user")
    fs.StringVar(&opts.RunAsDom, "domain", "", "Account domain for -user")
    fs.StringVar(&opts.RunAsPass, "password", "", "Password for -user")
    _ = fs.Parse(args)
    return opts
}
