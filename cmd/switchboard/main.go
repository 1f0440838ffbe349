// Switchboard - MQTT-driven output controller
//
// Switchboard keeps a fixed table of named binary outputs (relays,
// contactors, indicator circuits) synchronised with remote desired
// state delivered over MQTT. It boots with every output de-asserted,
// applies aggregate commands as they arrive, and publishes a retained
// snapshot of the full output table after every change.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/switchboard/internal/channel"
	"github.com/nerrad567/switchboard/internal/controller"
	"github.com/nerrad567/switchboard/internal/history"
	"github.com/nerrad567/switchboard/internal/infrastructure/config"
	"github.com/nerrad567/switchboard/internal/infrastructure/database"
	"github.com/nerrad567/switchboard/internal/infrastructure/influxdb"
	"github.com/nerrad567/switchboard/internal/infrastructure/logging"
	"github.com/nerrad567/switchboard/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting switchboard",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Build the output driver and channel registry
	driver, err := buildDriver(cfg, log)
	if err != nil {
		return fmt.Errorf("initialising output driver: %w", err)
	}

	registry, err := channel.New(driver, channelDefinitions(cfg))
	if err != nil {
		return fmt.Errorf("building channel registry: %w", err)
	}
	registry.SetLogger(log)

	// Fail-safe boot: every output de-asserted before anything else runs
	if initErr := registry.Initialize(); initErr != nil {
		return fmt.Errorf("initialising channels: %w", initErr)
	}
	log.Info("channels initialised", "count", registry.Len(), "driver", cfg.Device.Driver)

	// MQTT client (connection is driven by the manager's retry loop)
	mqttClient := mqtt.New(cfg.MQTT, cfg.Device.ID)
	mqttClient.SetLogger(log)
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	topics := mqtt.Topics{}

	publisher := controller.NewPublisher(registry, mqttClient, topics.State(cfg.Device.ID), cfg.Snapshot.MaxBytes)
	publisher.SetLogger(log)

	processor := controller.NewProcessor(registry, publisher)
	processor.SetLogger(log)

	// Snapshot history (optional)
	if cfg.History.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.History.Path,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening history database: %w", dbErr)
		}
		defer func() {
			log.Info("closing history database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing history database", "error", closeErr)
			}
		}()

		store := history.NewStore(db.DB)
		if initErr := store.Init(ctx); initErr != nil {
			return fmt.Errorf("initialising history store: %w", initErr)
		}
		processor.SetRecorder(store)
		log.Info("snapshot history enabled", "path", cfg.History.Path)
	} else {
		log.Info("snapshot history disabled")
	}

	// Telemetry (optional)
	if cfg.Telemetry.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.Telemetry, cfg.Device.ID)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		processor.SetTelemetry(influxClient)
		log.Info("telemetry enabled",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)
	} else {
		log.Info("telemetry disabled")
	}

	// Connection manager owns the connect/serve loop for the process lifetime
	manager := controller.NewManager(
		mqttClient,
		processor,
		publisher,
		topics.Control(cfg.Device.ID),
		controller.PolicyFromConfig(cfg.MQTT.Reconnect),
	)
	manager.SetLogger(log)

	log.Info("initialisation complete, entering control loop",
		"device_id", cfg.Device.ID,
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
	)

	if runErr := manager.Run(ctx); runErr != nil && !isCancellation(runErr) {
		return fmt.Errorf("control loop: %w", runErr)
	}

	log.Info("switchboard stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SWITCHBOARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SWITCHBOARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildDriver constructs the output driver named in the configuration.
// "memory" is an in-process fake for development and soak testing on
// machines without real outputs.
func buildDriver(cfg *config.Config, log *logging.Logger) (channel.Driver, error) {
	switch cfg.Device.Driver {
	case "gpio":
		return channel.NewGPIODriver(channelDefinitions(cfg))
	case "memory":
		log.Warn("using memory driver, no hardware outputs will change")
		return channel.NewMemoryDriver(), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Device.Driver)
	}
}

// channelDefinitions converts the configured channel table into registry form.
func channelDefinitions(cfg *config.Config) []channel.Definition {
	defs := make([]channel.Definition, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		defs = append(defs, channel.Definition{
			Name: ch.Name,
			Pin:  channel.Pin(ch.Pin),
		})
	}
	return defs
}

// isCancellation reports whether err is the normal shutdown-signal exit.
func isCancellation(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
