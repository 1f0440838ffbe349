package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
// Wrap with fmt.Errorf("%w: details", Err...) for context.
var (
	// ErrDisabled indicates telemetry is turned off in configuration.
	ErrDisabled = errors.New("telemetry disabled")

	// ErrNotConnected indicates an operation was attempted on a closed client.
	ErrNotConnected = errors.New("not connected to influxdb")

	// ErrConnectionFailed indicates the initial connection could not be established.
	ErrConnectionFailed = errors.New("influxdb connection failed")
)
