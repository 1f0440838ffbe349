package channel

import "errors"

// Domain errors for the channel package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, channel.ErrChannelNotFound) {
//	    // handle unknown channel
//	}
var (
	// ErrNoChannels is returned when a registry is constructed with an empty table.
	ErrNoChannels = errors.New("channel: at least one channel is required")

	// ErrEmptyName is returned when a channel definition has no name.
	ErrEmptyName = errors.New("channel: name cannot be empty")

	// ErrDuplicateName is returned when two definitions share a name
	// (compared case-insensitively).
	ErrDuplicateName = errors.New("channel: duplicate name")

	// ErrChannelNotFound is returned by Read for a name with no matching channel.
	ErrChannelNotFound = errors.New("channel: not found")

	// ErrPinNotFound is returned by the GPIO driver when a pin cannot be resolved.
	ErrPinNotFound = errors.New("channel: pin not found")
)
