// Cozytouch Bridge
//
// Exposes Cozytouch (Atlantic/Thermor) occupancy and contact sensors to
// Home Assistant as MQTT-discovered binary sensors. Device snapshots are
// published by an external poller; the bridge only reads them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-cozytouch/migrations"

	"github.com/nerrad567/gray-logic-cozytouch/internal/api"
	"github.com/nerrad567/gray-logic-cozytouch/internal/binarysensor"
	"github.com/nerrad567/gray-logic-cozytouch/internal/coordinator"
	"github.com/nerrad567/gray-logic-cozytouch/internal/cozytouch"
	"github.com/nerrad567/gray-logic-cozytouch/internal/hass"
	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/mqtt"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	originName        = "cozytouch-bridge"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "token" {
		err = runToken(os.Args[2:], os.Stdout)
	} else {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runToken prints a bearer token for the API signed with the configured
// secret. Usage: cozytouch-bridge token <subject> [ttl].
func runToken(args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: cozytouch-bridge token <subject> [ttl]")
	}

	ttl := api.DefaultTokenTTL
	if len(args) == 2 {
		parsed, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("parsing ttl: %w", err)
		}
		ttl = parsed
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.API.Auth.Secret == "" {
		return fmt.Errorf("api.auth.secret is not set")
	}

	token, err := api.IssueToken(cfg.API.Auth.Secret, args[0], ttl)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	log := logging.Default()
	log.Info("starting Cozytouch bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	topics := mqtt.Topics{
		DiscoveryPrefix: cfg.HomeAssistant.DiscoveryPrefix,
		StatePrefix:     cfg.HomeAssistant.StateTopicPrefix,
		NodeID:          cfg.Bridge.ID,
	}
	mqttClient, err := mqtt.Connect(cfg.MQTT, topics)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	coord := coordinator.New()

	platform, err := hass.NewPlatform(hass.Options{
		Publisher:   mqttClient,
		Topics:      topics,
		QoS:         mqttClient.QoS(),
		StatusTopic: cfg.HomeAssistant.StatusTopic,
		Repository:  hass.NewSQLiteRepository(db.DB),
		Available:   coord.LastUpdateSuccess,
		Origin:      hass.Origin{Name: originName, Version: version},
	})
	if err != nil {
		return fmt.Errorf("creating entity platform: %w", err)
	}
	platform.SetLogger(log)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected, republishing entities")
		platform.Republish()
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	if startErr := platform.Start(); startErr != nil {
		return fmt.Errorf("starting entity platform: %w", startErr)
	}
	defer func() {
		if closeErr := platform.Close(); closeErr != nil {
			log.Error("error closing entity platform", "error", closeErr)
		}
	}()

	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:      cfg.API,
			WS:          cfg.WebSocket,
			Logger:      log,
			Entities:    platform,
			Coordinator: coord,
			MQTT:        mqttClient,
			Version:     version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		platform.SetObserver(srv.Hub())
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	// Registered before setup so no snapshot between setup and wiring is missed.
	removeListener := coord.AddListener(platform.Refresh)
	defer removeListener()

	feed := coordinator.NewFeed(coord, cfg.Cozytouch.SnapshotTopic, mqttClient.QoS())
	feed.SetLogger(log)
	if feedErr := feed.Start(mqttClient); feedErr != nil {
		return fmt.Errorf("starting snapshot feed: %w", feedErr)
	}
	defer func() {
		if stopErr := feed.Stop(); stopErr != nil {
			log.Error("error stopping snapshot feed", "error", stopErr)
		}
	}()
	log.Info("snapshot feed started", "topic", cfg.Cozytouch.SnapshotTopic)

	if waitErr := waitForSnapshot(ctx, coord); waitErr != nil {
		return waitErr
	}

	entry := hass.ConfigEntry{
		EntryID: cfg.Cozytouch.EntryID,
		Domain:  cozytouch.Domain,
		Title:   cfg.Cozytouch.Title,
	}
	add := platform.AddEntitiesFor(entry)
	if setupErr := binarysensor.SetupEntry(ctx, entry, coord, add, binarysensor.WithLogger(log)); setupErr != nil {
		return fmt.Errorf("setting up binary sensors: %w", setupErr)
	}
	log.Info("binary sensors registered", "entities", platform.Count())

	if removed, pruneErr := platform.PruneStale(ctx, entry.EntryID); pruneErr != nil {
		log.Warn("pruning stale entities failed", "error", pruneErr)
	} else if removed > 0 {
		log.Info("stale entities removed", "count", removed)
	}

	if err := healthCheck(ctx, db, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	log.Info("Cozytouch bridge stopped")
	return nil
}

// getConfigPath returns COZYTOUCH_CONFIG or the default path.
func getConfigPath() string {
	if path := os.Getenv("COZYTOUCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// waitForSnapshot blocks until the coordinator holds data. Entities are
// derived from the first snapshot, so setup cannot run before it.
func waitForSnapshot(ctx context.Context, coord *coordinator.Coordinator) error {
	ready := make(chan struct{})
	var once sync.Once
	remove := coord.AddListener(func() {
		if coord.Data() != nil {
			once.Do(func() { close(ready) })
		}
	})
	defer remove()

	if coord.Data() != nil {
		return nil
	}

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for first snapshot: %w", ctx.Err())
	}
}

// healthCheck verifies the database and MQTT connection.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
