package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound payloads well under typical broker limits.
// Snapshot payloads are already bounded much tighter by the publisher.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a message to the specified MQTT topic at the configured QoS.
//
// Retained Messages:
//   - When true, the broker stores the last message for the topic and new
//     subscribers immediately receive it
//   - Used for the state and status topics; never for commands
//
// Parameters:
//   - topic: The topic to publish to
//   - payload: The message payload (JSON)
//   - retained: Whether the broker should retain the message
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, byte(c.cfg.QoS), retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
