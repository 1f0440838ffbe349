package controller

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// inboundQueueSize buffers messages delivered by the transport while one
// command is being serviced. Commands are serviced one at a time to
// completion; sustained overruns are the broker's flow control problem,
// not the manager's.
const inboundQueueSize = 16

// inbound is one message delivered by the transport.
type inbound struct {
	topic   string
	payload []byte
}

// Manager owns the connection lifecycle: disconnected → connecting →
// connected, forever. There is no terminal state; the loop runs until the
// context is cancelled.
//
// The manager goroutine is the single owner of all control state. Inbound
// messages and disconnect signals arrive on channels and are serviced one
// at a time, so the registry, publisher and processor need no locking.
type Manager struct {
	transport Transport
	processor *Processor
	publisher *Publisher

	controlTopic string
	retry        RetryPolicy
	logger       Logger

	// sleep is the retry delay; injectable so tests can run without real time.
	sleep func(ctx context.Context, d time.Duration)

	messages    chan inbound
	disconnects chan error
}

// NewManager creates a connection manager.
//
// Parameters:
//   - transport: The messaging link (MQTT in production)
//   - processor: Handles inbound commands
//   - publisher: Publishes the fresh-connection snapshot
//   - controlTopic: Topic to subscribe for desired-state commands
//   - retry: Delay policy between failed connection attempts
func NewManager(transport Transport, processor *Processor, publisher *Publisher, controlTopic string, retry RetryPolicy) *Manager {
	m := &Manager{
		transport:    transport,
		processor:    processor,
		publisher:    publisher,
		controlTopic: controlTopic,
		retry:        retry,
		logger:       noopLogger{},
		sleep:        sleepContext,
		messages:     make(chan inbound, inboundQueueSize),
		disconnects:  make(chan error, 1),
	}
	transport.SetOnDisconnect(m.signalDisconnect)
	return m
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Run drives the connection state machine until ctx is cancelled.
//
// Each cycle: connect (retrying per the policy for as long as it takes),
// then service inbound commands until the link drops, then start over.
// Connection failures are never fatal; the only way out is cancellation.
//
// Returns:
//   - error: ctx.Err() after cancellation
func (m *Manager) Run(ctx context.Context) error {
	for {
		if err := m.connect(ctx); err != nil {
			return err
		}
		if err := m.serve(ctx); err != nil {
			return err
		}
	}
}

// connect blocks until a session is established or ctx is cancelled.
//
// On every successful (re)connection the control topic is re-subscribed
// and one snapshot is published unconditionally, so observers see fresh
// state after any reconnect, not just after a change. No session state
// survives a disconnect.
func (m *Manager) connect(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// The link can already be up when a subscribe failure sent us back
		// around the loop; connecting again would fail spuriously.
		if !m.transport.IsConnected() {
			if err := m.transport.Connect(ctx); err != nil {
				delay := m.retry.Next()
				m.logger.Warn("connection attempt failed",
					"error", err,
					"retry_in", delay.String(),
				)
				m.sleep(ctx, delay)
				continue
			}

			session := uuid.NewString()
			m.logger.Info("connected", "session", session)
			m.drainDisconnects()
		}

		if err := m.transport.Subscribe(m.controlTopic, m.enqueue); err != nil {
			// A session that cannot receive commands is useless; tear it
			// down and go around the retry loop again.
			m.logger.Error("subscribe failed", "topic", m.controlTopic, "error", err)
			delay := m.retry.Next()
			m.sleep(ctx, delay)
			continue
		}

		if _, err := m.publisher.PublishSnapshot(); err != nil {
			m.logger.Error("announce snapshot failed", "error", err)
		}

		m.retry.Reset()
		return nil
	}
}

// serve processes inbound traffic until the link drops or ctx is cancelled.
// A nil return means the link was lost and the caller should reconnect.
func (m *Manager) serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-m.disconnects:
			m.logger.Warn("connection lost", "error", err)
			return nil
		case msg := <-m.messages:
			if err := m.processor.HandleCommand(ctx, msg.payload); err != nil {
				m.logger.Warn("command dropped", "topic", msg.topic, "error", err)
			}
		}
	}
}

// enqueue is the transport subscription handler. It hands the message to
// the manager goroutine; if the queue is full the message is dropped and
// the retained state snapshot lets the sender observe what actually applied.
func (m *Manager) enqueue(topic string, payload []byte) {
	select {
	case m.messages <- inbound{topic: topic, payload: payload}:
	default:
		m.logger.Warn("inbound queue full, dropping command", "topic", topic)
	}
}

// signalDisconnect forwards a transport disconnect to the manager goroutine.
// The channel holds one signal; repeats for the same outage collapse.
func (m *Manager) signalDisconnect(err error) {
	select {
	case m.disconnects <- err:
	default:
	}
}

// drainDisconnects clears signals left over from a previous session so a
// stale notification does not immediately tear down the new one.
func (m *Manager) drainDisconnects() {
	select {
	case <-m.disconnects:
	default:
	}
}

// sleepContext sleeps for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
