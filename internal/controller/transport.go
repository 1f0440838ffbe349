package controller

import "context"

// MessageHandler is the callback signature for inbound messages. It is an
// alias so transport implementations can satisfy Transport without
// importing this package.
type MessageHandler = func(topic string, payload []byte)

// Transport is the messaging link consumed by the connection manager.
//
// The production implementation is the MQTT client in
// internal/infrastructure/mqtt; tests substitute an in-memory fake.
//
// A Transport reports link loss through the SetOnDisconnect callback. It
// must not reconnect on its own: the connection manager owns the retry
// loop so that reconnection policy stays in one place.
type Transport interface {
	// Connect performs one blocking connection attempt.
	Connect(ctx context.Context) error

	// Subscribe registers a handler for messages on the topic. Subscriptions
	// do not survive a disconnect; the manager re-subscribes on every session.
	Subscribe(topic string, handler MessageHandler) error

	// Publish sends a payload, optionally retained by the broker.
	Publish(topic string, payload []byte, retained bool) error

	// IsConnected reports the last known link state.
	IsConnected() bool

	// SetOnDisconnect registers a callback invoked when the link is lost.
	SetOnDisconnect(fn func(err error))
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
