// Package config provides YAML-based configuration loading for pipeshell.
package config

import (
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "runtime"
    "strings"

    "github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
    // AppName optional logical name of the endpoint
    AppName string `mapstructure:"app_name"`

    // Log holds logging configuration
    Log LogConfig `mapstructure:"log"`

    // Channel describes the duplex transport used to reach the peer
    Channel ChannelConfig `mapstructure:"channel"`

    // Crypto controls the encrypted line protocol; empty passphrase disables it
    Crypto CryptoConfig `mapstructure:"crypto"`

    // Host describes the interactive command host spawned on the server side
    Host HostConfig `mapstructure:"host"`

    // Session holds relay/supervisor timing knobs
    Session SessionConfig `mapstructure:"session"`
}

// LogConfig defines logger settings.
type LogConfig struct {
    // Level: debug, info, warn, error
    Level string `mapstructure:"level"`
    // Format: console or json
    Format string `mapstructure:"format"`
    // Outputs: list of outputs: stdout, stderr, or file paths
    Outputs []string `mapstructure:"outputs"`

    // Rotation controls file rotation when writing to files
    Rotation RotationConfig `mapstructure:"rotation"`
    // Development toggles development-friendly logging options
    Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
    Enable     bool `mapstructure:"enable"`
    MaxSizeMB  int  `mapstructure:"max_size_mb"`
    MaxBackups int  `mapstructure:"max_backups"`
    MaxAgeDays int  `mapstructure:"max_age_days"`
    Compress   bool `mapstructure:"compress"`
}

// ChannelConfig selects and addresses the duplex transport.
type ChannelConfig struct {
    // Kind: tcp, quic, winpipe or mem
    Kind string `mapstructure:"kind"`
    // Name is the logical channel name: pipe path for winpipe, listen
    // address for tcp/quic
    Name string `mapstructure:"name"`
    // Endpoint is the remote locator used by the client; empty means the
    // local machine
    Endpoint string `mapstructure:"endpoint"`
}

// CryptoConfig controls per-line authenticated encryption.
type CryptoConfig struct {
    // Passphrase shared by both peers; empty runs the channel in the clear
    Passphrase string `mapstructure:"passphrase"`
    // Iterations for the password KDF; must match on both peers
    Iterations int `mapstructure:"iterations"`
    // PaddingMin/PaddingMax bound the random decoy lengths added around
    // each plaintext unit
    PaddingMin int `mapstructure:"padding_min"`
    PaddingMax int `mapstructure:"padding_max"`
}

// HostConfig describes the command host process.
type HostConfig struct {
    Command string   `mapstructure:"command"`
    Args    []string `mapstructure:"args"`

    // RunAs optionally launches the host under another account
    RunAs CredentialsConfig `mapstructure:"run_as"`
}

// CredentialsConfig carries alternate-identity credentials for the host.
type CredentialsConfig struct {
    User     string `mapstructure:"user"`
    Domain   string `mapstructure:"domain"`
    Password string `mapstructure:"password"`
}

// SessionConfig holds relay timing parameters.
type SessionConfig struct {
    // PollIntervalMS bounds how fast disconnects/host exits are noticed
    PollIntervalMS int `mapstructure:"poll_interval_ms"`
    // ExitGraceMS delays client teardown after sending the exit command
    ExitGraceMS int `mapstructure:"exit_grace_ms"`
    // ChunkBytes is the outbound read granularity from the host
    ChunkBytes int `mapstructure:"chunk_bytes"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
    return &Config{
        AppName: "pipeshell",
        Log: LogConfig{
            Level:       "info",
            Format:      "console",
            Outputs:     []string{"stderr"},
            Development: true,
            Rotation: RotationConfig{
                Enable:     false,
                MaxSizeMB:  50,
                MaxBackups: 3,
                MaxAgeDays: 28,
                Compress:   true,
            },
        },
        Channel: ChannelConfig{
            Kind: "tcp",
            Name: ":7890",
        },
        Crypto: CryptoConfig{
            Iterations: 4096,
            PaddingMin: 16,
            PaddingMax: 512,
        },
        Host:    defaultHost(),
        Session: SessionConfig{PollIntervalMS: 100, ExitGraceMS: 500, ChunkBytes: 1},
    }
}

func defaultHost() HostConfig {
    if runtime.GOOS == "windows" {
        return HostConfig{Command: "cmd.exe"}
    }
    return HostConfig{Command: "/bin/sh", Args: []string{"-i"}}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix PIPESHELL and `.`/`-` are replaced with `_`.
// Example: PIPESHELL_CRYPTO_PASSPHRASE=secret1
func Load(path string) (*Config, error) {
    cfg := Default()

    v := viper.New()
    v.SetConfigType("yaml")
    v.SetEnvPrefix("PIPESHELL")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
    v.AutomaticEnv()

    // seed defaults for viper so env-only configs work
    v.SetDefault("app_name", cfg.AppName)
    v.SetDefault("log.level", cfg.Log.Level)
    v.SetDefault("log.format", cfg.Log.Format)
    v.SetDefault("log.outputs", cfg.Log.Outputs)
    v.SetDefault("log.development", cfg.Log.Development)
    v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
    v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
    v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
    v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
    v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
    v.SetDefault("channel.kind", cfg.Channel.Kind)
    v.SetDefault("channel.name", cfg.Channel.Name)
    v.SetDefault("channel.endpoint", cfg.Channel.Endpoint)
    v.SetDefault("crypto.passphrase", cfg.Crypto.Passphrase)
    v.SetDefault("crypto.iterations", cfg.Crypto.Iterations)
    v.SetDefault("crypto.padding_min", cfg.Crypto.PaddingMin)
    v.SetDefault("crypto.padding_max", cfg.Crypto.PaddingMax)
    v.SetDefault("host.command", cfg.Host.Command)
    v.SetDefault("host.args", cfg.Host.Args)
    v.SetDefault("host.run_as.user", cfg.Host.RunAs.User)
    v.SetDefault("host.run_as.domain", cfg.Host.RunAs.Domain)
    v.SetDefault("host.run_as.password", cfg.Host.RunAs.Password)
    v.SetDefault("session.poll_interval_ms", cfg.Session.PollIntervalMS)
    v.SetDefault("session.exit_grace_ms", cfg.Session.ExitGraceMS)
    v.SetDefault("session.chunk_bytes", cfg.Session.ChunkBytes)

    // Choose config file
    if path == "" {
        if envPath := os.Getenv("PIPESHELL_CONFIG"); envPath != "" {
            path = envPath
        }
    }

    if path != "" {
        v.SetConfigFile(path)
    } else {
        // Search common locations with base name `pipeshell`
        v.SetConfigName("pipeshell")
        v.AddConfigPath(".")
        v.AddConfigPath("./configs")
        if home, err := os.UserHomeDir(); err == nil {
            v.AddConfigPath(filepath.Join(home, ".pipeshell"))
        }
    }

    // Read config file if present; if not found, continue with defaults/env
    if err := v.ReadInConfig(); err != nil {
        var viperConfigFileNotFound viper.ConfigFileNotFoundError
        if !errors.As(err, &viperConfigFileNotFound) {
            return nil, fmt.Errorf("read config: %w", err)
        }
    }

    if err := v.Unmarshal(&cfg); err != nil {
        return nil, fmt.Errorf("decode config: %w", err)
    }

    if err := cfg.validate(); err != nil {
        return nil, err
    }
    return cfg, nil
}

func (c *Config) validate() error {
    lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
    switch lvl {
    case "debug", "info", "warn", "warning", "error":
        // ok
    default:
        return fmt.Errorf("invalid log.level: %q", c.Log.Level)
    }

    if c.Log.Format == "" {
        c.Log.Format = "console"
    }
    if len(c.Log.Outputs) == 0 {
        c.Log.Outputs = []string{"stderr"}
    }

    c.Channel.Kind = strings.ToLower(strings.TrimSpace(c.Channel.Kind))
    switch c.Channel.Kind {
    case "tcp", "quic", "winpipe", "mem":
        // ok
    default:
        return fmt.Errorf("invalid channel.kind: %q", c.Channel.Kind)
    }
    if strings.TrimSpace(c.Channel.Name) == "" {
        return errors.New("channel.name must not be empty")
    }

    if c.Crypto.Iterations <= 0 {
        c.Crypto.Iterations = 4096
    }
    if c.Crypto.PaddingMin < 0 || c.Crypto.PaddingMax < c.Crypto.PaddingMin {
        return fmt.Errorf("invalid crypto padding bounds: [%d,%d]", c.Crypto.PaddingMin, c.Crypto.PaddingMax)
    }

    if strings.TrimSpace(c.Host.Command) == "" {
        return errors.New("host.command must not be empty")
    }
    if c.Session.PollIntervalMS <= 0 {
        c.Session.PollIntervalMS = 100
    }
    if c.Session.ExitGraceMS < 0 {
        c.Session.ExitGraceMS = 0
    }
    if c.Session.ChunkBytes <= 0 {
        c.Session.ChunkBytes = 1
    }
    return nil
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
    cfg, err := Load(path)
    if err != nil {
        panic(err)
    }
    return cfg
}
