// Package mqtt provides the MQTT transport for Switchboard.
//
// This package manages:
//   - Single-attempt connection to the broker (the connection manager in
//     internal/controller owns the retry loop; paho auto-reconnect is off)
//   - Retained publishing for the state and status topics
//   - Control topic subscription with panic-safe handlers
//   - Last Will and Testament (LWT) for offline detection
//
// # Topic scheme
//
//	switchboard/{device_id}/control   inbound desired-state commands
//	switchboard/{device_id}/state     retained state snapshots
//	switchboard/{device_id}/status    retained online/offline status (LWT)
//
// # Security Considerations
//
//   - TLS is recommended off-LAN (mqtt.broker.tls: true)
//   - Credentials come from config/environment, never compiled in
//   - Anonymous access is only for local development
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT, cfg.Device.ID)
//	if err := client.Connect(ctx); err != nil {
//	    // the connection manager decides when to retry
//	}
//	defer client.Close()
package mqtt
