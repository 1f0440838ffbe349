package controller

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/switchboard/internal/channel"
)

// Publisher builds state snapshots and publishes them retained on the
// state topic.
//
// Snapshots are retained because channels are stateful: an observer joining
// mid-session gets the last known state from the broker immediately instead
// of waiting for the next change.
type Publisher struct {
	registry  *channel.Registry
	transport Transport
	topic     string
	maxBytes  int
	logger    Logger
}

// NewPublisher creates a publisher for the given registry and state topic.
//
// maxBytes bounds the encoded snapshot; a snapshot that would exceed it is
// abandoned rather than truncated.
func NewPublisher(registry *channel.Registry, transport Transport, topic string, maxBytes int) *Publisher {
	return &Publisher{
		registry:  registry,
		transport: transport,
		topic:     topic,
		maxBytes:  maxBytes,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the publisher.
func (p *Publisher) SetLogger(logger Logger) {
	p.logger = logger
}

// PublishSnapshot reads every channel in table order, encodes the snapshot
// and publishes it retained.
//
// The snapshot always contains exactly one entry per known channel. If the
// encoded payload would exceed the buffer limit, the publish is abandoned:
// registry state is unaffected, nothing is emitted, and ErrSnapshotTooLarge
// is returned for the caller to log.
//
// Returns:
//   - []channel.ChannelState: The states that were published, for callers
//     that record or mirror them
//   - error: Encode or transport failure; nil on success
func (p *Publisher) PublishSnapshot() ([]channel.ChannelState, error) {
	states, err := p.registry.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}

	payload, err := encodeSnapshot(states, p.maxBytes)
	if err != nil {
		return nil, err
	}

	if err := p.transport.Publish(p.topic, payload, true); err != nil {
		return nil, fmt.Errorf("publishing snapshot: %w", err)
	}

	p.logger.Debug("published state snapshot", "topic", p.topic, "bytes", len(payload))
	return states, nil
}

// encodeSnapshot renders the states as a JSON object in slice order.
//
// encoding/json marshals maps with sorted keys, which would lose the
// registry order, so the object is assembled by hand. Channel names are
// escaped through json.Marshal; token values are the fixed "on"/"off"
// strings and need no escaping.
func encodeSnapshot(states []channel.ChannelState, maxBytes int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, state := range states {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(state.Name)
		if err != nil {
			return nil, fmt.Errorf("encoding channel name %q: %w", state.Name, err)
		}
		buf.Write(name)
		buf.WriteString(`:"`)
		buf.WriteString(channel.FormatToken(state.Asserted))
		buf.WriteByte('"')
	}
	buf.WriteByte('}')

	if buf.Len() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes > %d", ErrSnapshotTooLarge, buf.Len(), maxBytes)
	}
	return buf.Bytes(), nil
}
