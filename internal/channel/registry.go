package channel

import (
	"fmt"
	"strings"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// Registry is the fixed, ordered table of channels and the sole owner of
// their output state. All writes to channel pins go through Set; no other
// component touches the driver directly.
//
// The registry is intentionally not locked: the connection manager
// serialises all access on a single goroutine.
type Registry struct {
	driver   Driver
	channels []Definition
	logger   Logger
}

// New creates a registry over the given driver and channel table.
//
// The table is validated (non-empty, names present and unique under
// case-insensitive comparison) and then frozen; snapshot order is the
// order of defs.
func New(driver Driver, defs []Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, ErrNoChannels
	}

	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, ErrEmptyName
		}
		key := strings.ToLower(def.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, def.Name)
		}
		seen[key] = true
	}

	channels := make([]Definition, len(defs))
	copy(channels, defs)

	return &Registry{
		driver:   driver,
		channels: channels,
		logger:   noopLogger{},
	}, nil
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Initialize deasserts every channel. Called once at boot so outputs come
// up off rather than at whatever level the hardware happened to hold.
func (r *Registry) Initialize() error {
	for _, ch := range r.channels {
		if err := r.driver.Deassert(ch.Pin); err != nil {
			return fmt.Errorf("initialising channel %q: %w", ch.Name, err)
		}
	}
	r.logger.Info("channels initialised", "count", len(r.channels))
	return nil
}

// Set drives the named channel to the requested level.
//
// The name is matched case-insensitively. A name with no matching channel
// is a no-op: Set returns false and no output changes, so the remaining
// entries of a multi-channel command are unaffected.
//
// Returns:
//   - bool: Whether a channel matched the name
//   - error: Driver failure on the matched channel, nil otherwise
func (r *Registry) Set(name string, asserted bool) (bool, error) {
	ch, ok := r.lookup(name)
	if !ok {
		return false, nil
	}

	var err error
	if asserted {
		err = r.driver.Assert(ch.Pin)
	} else {
		err = r.driver.Deassert(ch.Pin)
	}
	if err != nil {
		return true, fmt.Errorf("setting channel %q: %w", ch.Name, err)
	}

	r.logger.Debug("channel set", "channel", ch.Name, "state", FormatToken(asserted))
	return true, nil
}

// Read reports the current output level of the named channel, queried from
// the driver rather than a cached value.
//
// Returns ErrChannelNotFound if no channel matches the name.
func (r *Registry) Read(name string) (bool, error) {
	ch, ok := r.lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrChannelNotFound, name)
	}

	asserted, err := r.driver.IsAsserted(ch.Pin)
	if err != nil {
		return false, fmt.Errorf("reading channel %q: %w", ch.Name, err)
	}
	return asserted, nil
}

// Snapshot reports every channel's current level in table order.
//
// The result always contains exactly one entry per channel; a driver read
// failure aborts the whole snapshot rather than producing a partial one.
func (r *Registry) Snapshot() ([]ChannelState, error) {
	states := make([]ChannelState, 0, len(r.channels))
	for _, ch := range r.channels {
		asserted, err := r.driver.IsAsserted(ch.Pin)
		if err != nil {
			return nil, fmt.Errorf("reading channel %q: %w", ch.Name, err)
		}
		states = append(states, ChannelState{Name: ch.Name, Asserted: asserted})
	}
	return states, nil
}

// Len returns the number of channels in the table.
func (r *Registry) Len() int {
	return len(r.channels)
}

// lookup finds the channel matching name case-insensitively.
// Names are unique, so the first match is the only match.
func (r *Registry) lookup(name string) (Definition, bool) {
	for _, ch := range r.channels {
		if strings.EqualFold(ch.Name, name) {
			return ch, true
		}
	}
	return Definition{}, false
}
