// Package logging provides structured logging for Switchboard.
//
// It wraps Go's standard log/slog package so every log line carries the
// service name and version, with level filtering and a choice of JSON
// (production) or text (development) output.
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log broker credentials or telemetry tokens.
package logging
