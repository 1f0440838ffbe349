// Package history records published state snapshots in SQLite.
//
// Each successfully processed command appends one row holding the full
// snapshot as JSON. The store provides a local audit trail of what the
// switchboard actually announced, independent of the broker's retained
// message and the telemetry sink.
//
// Recording is optional (history.enabled in config.yaml) and best-effort:
// a write failure is logged by the caller and never interrupts command
// processing. Entries are never read back into outputs.
package history
