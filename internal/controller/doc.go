// Package controller implements the Switchboard control loop: keeping the
// channel registry synchronized with remote desired state over an
// unreliable messaging link.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────┐
//	│                     Connection Manager                      │
//	│   disconnected → connecting → connected → disconnected …    │
//	│                                                             │
//	│   on every (re)connection:                                  │
//	│     subscribe control topic, publish one snapshot           │
//	│                                                             │
//	│   inbound command ──▶ Processor ──▶ channel.Registry        │
//	│                            │                                │
//	│                            ▼                                │
//	│                       Publisher ──▶ retained state topic    │
//	└────────────────────────────────────────────────────────────┘
//
// # Error tolerance
//
// Every detected fault is either retried or safely dropped; nothing is
// fatal. Link loss restarts the connect loop. An undecodable command is
// inert. An unknown channel name in a command is skipped without affecting
// the other entries. A snapshot that will not fit the bounded buffer is
// abandoned whole, never truncated.
//
// # Concurrency
//
// The manager goroutine is the single owner of the registry and all
// mutable state. The transport delivers messages and disconnect signals
// into channels; the manager services them one at a time to completion.
// There are no locks in the control path and no backpressure beyond a
// small inbound buffer.
//
// # Reconnect policy
//
// The blocking delay between attempts is a RetryPolicy: FixedDelay is the
// default (a LAN-local broker wants availability, not backoff), and
// ExponentialBackoff (capped, jittered) is available for rate-limited or
// remote brokers. The sleep itself is injectable so tests simulate time.
package controller
