// Package influxdb provides the optional telemetry sink for channel state.
//
// Every applied state transition is written as a point in the
// channel_state measurement, tagged by device and channel. Writes are
// batched and non-blocking; telemetry failures are reported through an
// error callback and never interrupt command processing.
//
// The client is constructed from config.TelemetryConfig and is a no-op
// participant when telemetry is disabled (Connect returns ErrDisabled
// and the caller simply runs without a sink).
package influxdb
