package channel

import "strings"

// Pin is an opaque hardware pin handle. Its meaning belongs to the Driver:
// for the GPIO driver it is the host pin number, for the memory driver it is
// just a map key.
type Pin int

// Definition declares one channel: a unique name and the pin it drives.
// The channel table is fixed at construction and never changes afterwards.
type Definition struct {
	Name string
	Pin  Pin
}

// State tokens as they appear on the wire. Inbound tokens are matched
// case-insensitively; outbound snapshots always use these exact strings.
const (
	TokenOn  = "on"
	TokenOff = "off"
)

// ParseToken maps a desired-state token to an output level.
//
// Only a case-insensitive "on" asserts the channel. Every other token,
// including the empty string, deasserts it. Unrecognised tokens switching
// the output off (rather than being rejected) keeps a half-understood
// command from leaving a load energised.
func ParseToken(token string) bool {
	return strings.EqualFold(token, TokenOn)
}

// FormatToken renders an output level as its wire token.
func FormatToken(asserted bool) string {
	if asserted {
		return TokenOn
	}
	return TokenOff
}

// ChannelState is one entry of a registry snapshot.
type ChannelState struct {
	Name     string
	Asserted bool
}
