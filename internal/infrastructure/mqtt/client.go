package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/switchboard/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang as the Switchboard messaging transport.
//
// It performs single connection attempts, publishing, and subscription, and
// reports link loss through the SetOnDisconnect callback. It deliberately
// does NOT reconnect on its own: the connection manager in
// internal/controller owns the retry loop, so paho's auto-reconnect is
// disabled (see options.go).
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig

	// deviceID names this device in topics and status payloads.
	deviceID string

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// onDisconnect is invoked when the link is lost (set via SetOnDisconnect).
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	// logger for handler panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// New creates a client for the broker in cfg, identifying as deviceID.
//
// The client is not connected; call Connect. The Last Will and Testament is
// configured so the broker marks the device offline if it vanishes without
// a graceful Close.
func New(cfg config.MQTTConfig, deviceID string) *Client {
	opts := buildClientOptions(cfg, deviceID)
	configureLWT(opts, deviceID)

	c := &Client{
		cfg:      cfg,
		options:  opts,
		deviceID: deviceID,
	}

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	c.client = pahomqtt.NewClient(opts)
	return c
}

// Connect performs one blocking connection attempt.
//
// On success the device's online status is published retained to the
// status topic. On failure the caller decides when to try again; this
// method never retries internally.
//
// Parameters:
//   - ctx: Bounds the attempt alongside the configured connect timeout
//
// Returns:
//   - error: If the attempt fails or ctx is cancelled first
func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
	case <-token.Done():
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.publishOnlineStatus()
	return nil
}

// handleDisconnect is called by paho when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// publishOnlineStatus publishes the device's online status, retained.
func (c *Client) publishOnlineStatus() {
	topic := Topics{}.Status(c.deviceID)
	payload := buildOnlinePayload(c.deviceID)
	c.client.Publish(topic, byte(c.cfg.QoS), true, payload)
}

// Close gracefully disconnects from the broker.
//
// A graceful offline status is published first (distinct from the LWT
// crash status), then pending operations are quiesced.
//
// Returns:
//   - error: Always nil; closing an already-closed client is not an error
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		topic := Topics{}.Status(c.deviceID)
		payload := buildOfflinePayload(c.deviceID)
		token := c.client.Publish(topic, byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// SetOnDisconnect sets a callback to be invoked when the link is lost.
// The error parameter describes why the connection dropped.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = fn
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for handler panic and error logging.
// If not set, handler panics are recovered silently.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}
