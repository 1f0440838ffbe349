package controller

import "errors"

// Domain errors for the controller package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, controller.ErrSnapshotTooLarge) {
//	    // snapshot publish was abandoned
//	}
var (
	// ErrSnapshotTooLarge is returned when the encoded snapshot would exceed
	// the bounded output buffer. The publish is abandoned whole; a truncated
	// snapshot is never emitted.
	ErrSnapshotTooLarge = errors.New("controller: snapshot exceeds buffer limit")

	// ErrDecodeFailed is returned when an inbound command cannot be decoded.
	// The command is dropped in its entirety; no channel changes.
	ErrDecodeFailed = errors.New("controller: command decode failed")
)
