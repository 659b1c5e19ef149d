// Package transport defines the duplex channel interfaces for pipeshell and
// provides implementations (tcp, quic, winpipe, mem).
//
// Key concepts:
// - Transport: dials/listens for Channels of a specific Kind
// - Listener: accepts one inbound Channel at a time on a named endpoint
// - Channel: a reliable ordered byte stream to the peer, usable either
//   line-oriented (encrypted records) or raw (plaintext relay), with a
//   best-effort Connected flag sampled by the session supervisor
package transport
