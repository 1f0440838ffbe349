package influxdb

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// measurementChannelState is the measurement name for channel transitions.
const measurementChannelState = "channel_state"

// WriteChannelState records a channel's asserted/deasserted state as a point.
//
// The write is non-blocking: the point is queued in the batch buffer and
// sent by the background writer. Errors surface via the SetOnError callback.
//
// Parameters:
//   - name: Channel name (e.g. "d0")
//   - asserted: Current electrical state of the output
//
// Returns:
//   - error: ErrNotConnected if the client has been closed
func (c *Client) WriteChannelState(name string, asserted bool) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	value := 0
	if asserted {
		value = 1
	}

	point := influxdb2.NewPoint(
		measurementChannelState,
		map[string]string{
			"device":  c.deviceID,
			"channel": name,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)

	return nil
}
