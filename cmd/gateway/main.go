// Command gateway runs the Angzarr coordination core: the Aggregate
// Coordinator, Event Bus, Projector Coordinator, Saga & Process-Manager
// Coordinators, and Event Query & Streaming surface, bound together and
// served over gRPC (plus a REST/JSON transcoding mux), following the same
// cobra-rooted CLI shape cuemby/warren's cmd/warren uses for its own
// single-binary entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/angzarr-io/angzarr/internal/aggregate"
	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/clients"
	"github.com/angzarr-io/angzarr/internal/config"
	"github.com/angzarr-io/angzarr/internal/grpcserver"
	"github.com/angzarr-io/angzarr/internal/logging"
	"github.com/angzarr-io/angzarr/internal/metrics"
	"github.com/angzarr-io/angzarr/internal/pm"
	"github.com/angzarr-io/angzarr/internal/projector"
	"github.com/angzarr-io/angzarr/internal/query"
	"github.com/angzarr-io/angzarr/internal/saga"
	"github.com/angzarr-io/angzarr/internal/store"
	"github.com/angzarr-io/angzarr/internal/store/boltdriver"
	"github.com/angzarr-io/angzarr/internal/store/memdriver"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "gateway",
	Short:   "Angzarr coordination core",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("gateway version %s (%s)\n", Version, Commit))
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to gateway config YAML (defaults layered otherwise)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(listDriversCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return runGateway(cfg)
	},
}

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Load and validate the gateway config without starting anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		fmt.Printf("config OK: transport=%s storage=%s bus=%s cascade_max_depth=%d\n",
			cfg.Transport.Type, cfg.Storage.Driver, cfg.Bus.Driver, cfg.Cascade.MaxDepth)
		fmt.Printf("  aggregates=%d projectors=%d sagas=%d process_managers=%d upcasters=%d\n",
			len(cfg.Services.Aggregates), len(cfg.Services.Projectors),
			len(cfg.Services.Sagas), len(cfg.Services.ProcessManagers), len(cfg.Services.Upcasters))
		return nil
	},
}

var listDriversCmd = &cobra.Command{
	Use:   "list-drivers",
	Short: "List available storage and bus drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("storage drivers: memory, bolt")
		fmt.Println("bus drivers: inprocess")
		return nil
	},
}

// storeDriver is the union EventStore+SnapshotStore surface both drivers
// implement, letting runGateway wire storage without a type switch at every
// call site.
type storeDriver interface {
	store.EventStore
	store.SnapshotStore
}

func buildStore(cfg config.StorageConfig) (storeDriver, func() error, error) {
	switch cfg.Driver {
	case "bolt":
		d, err := boltdriver.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store at %s: %w", cfg.BoltPath, err)
		}
		return d, d.Close, nil
	default:
		d, err := memdriver.New()
		if err != nil {
			return nil, nil, fmt.Errorf("build memory store: %w", err)
		}
		return d, func() error { return nil }, nil
	}
}

func runGateway(cfg config.Config) error {
	logging.Init(logging.Config{Level: logging.Level(cfg.Log.Level), JSONOutput: cfg.Log.JSON})
	log := logging.WithComponent("gateway")
	log.Info().Str("version", Version).Msg("starting angzarr gateway")

	driver, closeStore, err := buildStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	var snapshots store.SnapshotStore = driver
	if cfg.Storage.CacheSize > 0 {
		snapshots = store.NewCachedSnapshotStore(driver, cfg.Storage.CacheSize)
	}

	eventBus := bus.New(bus.Config{QueueDepth: cfg.Bus.QueueDepth})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	registry := clients.NewRegistry()
	defer registry.Close()
	for _, a := range cfg.Services.Aggregates {
		if err := registry.RegisterAggregate(a.Domain, a.Endpoint); err != nil {
			return err
		}
	}
	for _, p := range cfg.Services.Projectors {
		if err := registry.RegisterProjector(p.Name, p.Endpoint); err != nil {
			return err
		}
	}
	for _, s := range cfg.Services.Sagas {
		if err := registry.RegisterSaga(s.Name, s.Endpoint); err != nil {
			return err
		}
	}
	for _, p := range cfg.Services.ProcessManagers {
		if err := registry.RegisterProcessManager(p.Name, p.Endpoint); err != nil {
			return err
		}
	}
	for _, u := range cfg.Services.Upcasters {
		if err := registry.RegisterUpcaster(u.Domain, u.Endpoint); err != nil {
			return err
		}
	}

	syncWaiter := aggregate.NewSyncWaiter(cfg.Cascade.SyncTimeout, cfg.Cascade.SyncTimeout)
	aggCoord := aggregate.New(aggregate.Config{
		SnapshotEvery:   cfg.Storage.SnapshotEvery,
		LockIdleTimeout: 30 * time.Minute,
	}, driver, snapshots, eventBus, registry, m, syncWaiter)

	sagaCoord := saga.New(saga.Config{
		MaxCascadeDepth:       cfg.Cascade.MaxDepth,
		MaxConcurrentDispatch: cfg.Cascade.MaxConcurrentDispatch,
		FallbackDomain:        cfg.Saga.FallbackDomain,
		DeadLetterAddr:        cfg.Saga.DeadLetterAddr,
		EscalationWebhook:     cfg.Saga.EscalationWebhook,
	}, registry, eventBus, aggCoord, syncWaiter, m)
	aggCoord.SetRevocationHandler(sagaCoord)
	for _, s := range cfg.Services.Sagas {
		if err := sagaCoord.Register(s.Topics, s.Name); err != nil {
			return fmt.Errorf("register saga %s: %w", s.Name, err)
		}
	}

	projCoord := projector.New(projector.Config{}, registry, driver, snapshots, eventBus, syncWaiter, m, projector.NewInMemorySink())
	for _, p := range cfg.Services.Projectors {
		if err := projCoord.RegisterProjector(p.Name, p.Sync, p.Topics); err != nil {
			return fmt.Errorf("register projector %s: %w", p.Name, err)
		}
	}

	pmCoord := pm.New(pm.Config{}, registry, driver, snapshots, eventBus, aggCoord)

	for _, p := range cfg.Services.ProcessManagers {
		if err := pmCoord.Register(ctx, p.Name, p.Domain); err != nil {
			return fmt.Errorf("register process manager %s: %w", p.Name, err)
		}
	}
	if err := projCoord.Start(ctx); err != nil {
		return fmt.Errorf("start projector coordinator: %w", err)
	}
	defer projCoord.Stop()
	if err := pmCoord.Start(ctx); err != nil {
		return fmt.Errorf("start process manager coordinator: %w", err)
	}
	defer pmCoord.Stop()

	reapTicker := time.NewTicker(5 * time.Minute)
	defer reapTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reapTicker.C:
				sagaCoord.ReapDepths()
			}
		}
	}()

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics, cfg.Transport.MetricsAddr, reg, log)
	}

	queryCoord := query.New(driver, snapshots, eventBus, syncWaiter)

	svc := grpcserver.Services{Aggregate: aggCoord, Query: queryCoord}
	return grpcserver.RunUntilSignal(cfg.Transport, svc, true, log)
}

func serveMetrics(cfg config.MetricsConfig, metricsAddr string, reg *prometheus.Registry, log zerolog.Logger) {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	addr := metricsAddr
	if addr == "" {
		addr = ":9090"
	}
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler(reg))
	log.Info().Str("addr", addr).Str("path", path).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server exited")
	}
}
