// Package config provides configuration loading for Switchboard.
//
// Configuration is loaded from a YAML file with hardcoded defaults and
// environment variable overrides, in that order of precedence:
//
//  1. Defaults (defaultConfig)
//  2. YAML file values
//  3. SWITCHBOARD_* environment variables
//
// The channel table (names and pin numbers) has no default and must be
// declared in the config file. Credentials should be supplied via
// environment variables rather than committed to the file:
//
//	SWITCHBOARD_MQTT_USERNAME
//	SWITCHBOARD_MQTT_PASSWORD
//	SWITCHBOARD_TELEMETRY_TOKEN
//
// # Example
//
//	device:
//	  id: room-switchboard
//	  driver: gpio
//	channels:
//	  - { name: d0, pin: 16 }
//	  - { name: d1, pin: 5 }
//	mqtt:
//	  broker:
//	    host: 192.168.1.4
//	    port: 1883
//	  reconnect:
//	    strategy: fixed
//	    delay: 5
package config
