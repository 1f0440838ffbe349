package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/switchboard/internal/channel"
)

// SnapshotRecorder persists published snapshots for audit. Implemented by
// the SQLite store in internal/history; optional.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, states []channel.ChannelState) error
}

// StateWriter mirrors channel states to a telemetry sink. Implemented by
// the InfluxDB client in internal/infrastructure/influxdb; optional.
type StateWriter interface {
	WriteChannelState(name string, asserted bool) error
}

// Processor applies inbound desired-state commands to the registry and
// announces the result with a single aggregate snapshot publish.
type Processor struct {
	registry  *channel.Registry
	publisher *Publisher
	recorder  SnapshotRecorder
	telemetry StateWriter
	logger    Logger
}

// NewProcessor creates a command processor.
func NewProcessor(registry *channel.Registry, publisher *Publisher) *Processor {
	return &Processor{
		registry:  registry,
		publisher: publisher,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the processor.
func (p *Processor) SetLogger(logger Logger) {
	p.logger = logger
}

// SetRecorder enables snapshot history recording after each command.
func (p *Processor) SetRecorder(recorder SnapshotRecorder) {
	p.recorder = recorder
}

// SetTelemetry enables per-channel telemetry writes after each command.
func (p *Processor) SetTelemetry(writer StateWriter) {
	p.telemetry = writer
}

// HandleCommand decodes one desired-state message and applies it.
//
// The payload must be a JSON object mapping channel names to state tokens.
// A payload that does not decode is dropped whole: no channel changes and
// nothing is published. On success every key/value pair is applied in
// document order; keys matching no channel are ignored without affecting
// the rest, and any value other than a case-insensitive "on" string
// (including non-string values) deasserts the channel. Channels are
// independent, so the result does not depend on pair order.
//
// After all pairs are applied, exactly one snapshot is published, however
// many channels the command touched. History and telemetry failures are
// logged, never escalated: they are observation paths, not control paths.
func (p *Processor) HandleCommand(ctx context.Context, payload []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		p.logger.Warn("dropping undecodable command", "error", err)
		return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	for name, value := range doc {
		token, _ := value.(string) // non-string reads as "", which deasserts
		matched, err := p.registry.Set(name, channel.ParseToken(token))
		if err != nil {
			p.logger.Error("channel set failed", "channel", name, "error", err)
			continue
		}
		if !matched {
			p.logger.Debug("ignoring unknown channel", "channel", name)
		}
	}

	states, err := p.publisher.PublishSnapshot()
	if err != nil {
		p.logger.Error("snapshot publish failed", "error", err)
		return err
	}

	if p.recorder != nil {
		if err := p.recorder.RecordSnapshot(ctx, states); err != nil {
			p.logger.Warn("snapshot history write failed", "error", err)
		}
	}
	if p.telemetry != nil {
		for _, state := range states {
			if err := p.telemetry.WriteChannelState(state.Name, state.Asserted); err != nil {
				p.logger.Warn("telemetry write failed", "error", err)
			}
		}
	}

	return nil
}
