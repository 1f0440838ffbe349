package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("SWITCHBOARD_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_UnknownDriver verifies run fails when the driver name is not recognised.
// Config validation catches this before the driver is built.
func TestRun_UnknownDriver(t *testing.T) {
	configPath := writeTestConfig(t, `
device:
  id: test-switchboard
  driver: pneumatic

channels:
  - name: d0
    pin: 16

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883

logging:
  level: info
  format: text
  output: stdout
`)
	t.Setenv("SWITCHBOARD_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with unknown driver")
	}
}

// TestRun_CancelDuringReconnect starts against an unreachable broker and
// cancels while the manager is in its retry loop. A shutdown signal during
// reconnection is a clean exit, not an error.
func TestRun_CancelDuringReconnect(t *testing.T) {
	configPath := writeTestConfig(t, `
device:
  id: test-switchboard
  driver: memory

channels:
  - name: d0
    pin: 16
  - name: d1
    pin: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
  reconnect:
    strategy: fixed
    delay: 1

logging:
  level: info
  format: text
  output: stdout
`)
	t.Setenv("SWITCHBOARD_CONFIG", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(2*time.Second, cancel)
	defer timer.Stop()
	defer cancel()

	if err := run(ctx); err != nil {
		t.Errorf("run() error = %v, want clean shutdown", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("SWITCHBOARD_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("SWITCHBOARD_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// writeTestConfig writes a config file into a temp dir and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}
