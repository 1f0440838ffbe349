package mqtt

import "fmt"

// TopicPrefix is the base for all Switchboard topics.
// Scheme: switchboard/{device_id}/{function}
const TopicPrefix = "switchboard"

// Topics provides builders for Switchboard MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	topics.Control("room-switchboard") // "switchboard/room-switchboard/control"
type Topics struct{}

// Control returns the topic on which desired-state commands arrive.
//
// Example: switchboard/room-switchboard/control
func (Topics) Control(deviceID string) string {
	return fmt.Sprintf("%s/%s/control", TopicPrefix, deviceID)
}

// State returns the topic on which state snapshots are published, retained.
//
// Example: switchboard/room-switchboard/state
func (Topics) State(deviceID string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefix, deviceID)
}

// Status returns the online/offline status topic (retained, with LWT).
//
// Example: switchboard/room-switchboard/status
func (Topics) Status(deviceID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, deviceID)
}

// AllStates returns a pattern matching every device's state topic.
//
// Pattern: switchboard/+/state
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefix)
}
