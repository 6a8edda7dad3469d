// Package config loads the gateway's declarative configuration document and
// applies environment overrides, following the same YAML-plus-env pattern
// cuemby/warren uses for its own resource manifests.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the gateway's top-level configuration document.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`
	Bus       BusConfig       `yaml:"bus"`
	Saga      SagaConfig      `yaml:"saga"`
	Cascade   CascadeConfig   `yaml:"cascade"`
	Upcaster  UpcasterConfig  `yaml:"upcaster"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
	Services  ServicesConfig  `yaml:"services"`
}

// ServicesConfig declares the externally-deployed business-logic endpoints
// the gateway dials at startup and registers against their respective
// coordinators.
type ServicesConfig struct {
	Aggregates      []AggregateRegistration      `yaml:"aggregates"`
	Projectors      []ProjectorRegistration      `yaml:"projectors"`
	Sagas           []SagaRegistration           `yaml:"sagas"`
	ProcessManagers []ProcessManagerRegistration `yaml:"process_managers"`
	Upcasters       []UpcasterRegistration       `yaml:"upcasters"`
}

// AggregateRegistration wires one domain's AggregateService endpoint.
type AggregateRegistration struct {
	Domain   string `yaml:"domain"`
	Endpoint string `yaml:"endpoint"`
}

// ProjectorRegistration wires one named projector, sync or async, to the
// topics (domain or domain.event_type) it wants delivered.
type ProjectorRegistration struct {
	Name     string   `yaml:"name"`
	Endpoint string   `yaml:"endpoint"`
	Sync     bool     `yaml:"sync"`
	Topics   []string `yaml:"topics"`
}

// SagaRegistration wires one named saga to the topics it reacts to.
type SagaRegistration struct {
	Name     string   `yaml:"name"`
	Endpoint string   `yaml:"endpoint"`
	Topics   []string `yaml:"topics"`
}

// ProcessManagerRegistration wires one named process manager, along with the
// domain its own aggregate identity lives in.
type ProcessManagerRegistration struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Domain   string `yaml:"domain"`
}

// UpcasterRegistration wires one domain's optional schema-upcasting service.
type UpcasterRegistration struct {
	Domain   string `yaml:"domain"`
	Endpoint string `yaml:"endpoint"`
}

// TransportConfig selects TCP or UDS for the gateway's own listeners, the
// same choice client/go's GetTransportConfig offers business services.
type TransportConfig struct {
	Type        string `yaml:"type"`          // "tcp" or "uds"
	Port        string `yaml:"port"`          // for tcp
	UDSBasePath string `yaml:"uds_base_path"` // for uds
	MetricsAddr string `yaml:"metrics_addr"`
}

// StorageConfig picks the EventStore/SnapshotStore driver.
type StorageConfig struct {
	Driver       string `yaml:"driver"` // "memory" or "bolt"
	BoltPath     string `yaml:"bolt_path"`
	SnapshotEvery uint32 `yaml:"snapshot_every"`
	CacheSize    int    `yaml:"cache_size"`
}

// BusConfig picks the Event Bus driver and optional outbox overlay.
type BusConfig struct {
	Driver          string `yaml:"driver"` // "inprocess"
	QueueDepth      int    `yaml:"queue_depth"`
	WorkerPoolSize  int    `yaml:"worker_pool_size"`
	OutboxEnabled   bool   `yaml:"outbox_enabled"`
	OutboxBatchSize int    `yaml:"outbox_batch_size"`
	OutboxPollEvery time.Duration `yaml:"outbox_poll_every"`
}

// SagaConfig controls compensation fallback policy (§4.5).
type SagaConfig struct {
	FallbackDomain    string `yaml:"fallback_domain"`
	DeadLetterAddr    string `yaml:"dead_letter_addr"`
	EscalationWebhook string `yaml:"escalation_webhook"`
}

// CascadeConfig bounds SyncMode CASCADE propagation (§5).
type CascadeConfig struct {
	MaxDepth              uint32        `yaml:"max_depth"`
	MaxConcurrentDispatch int64         `yaml:"max_concurrent_dispatch"`
	SyncTimeout           time.Duration `yaml:"sync_timeout"`
}

// UpcasterConfig wires an optional external UpcasterService.
type UpcasterConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// MetricsConfig controls the Prometheus HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration a fresh checkout runs with: in-memory
// storage, in-process bus, no outbox, cascade depth 10 (§5), TCP transport.
func Default() Config {
	return Config{
		Transport: TransportConfig{Type: "tcp", Port: "50250", MetricsAddr: ":9090"},
		Storage:   StorageConfig{Driver: "memory", SnapshotEvery: 100, CacheSize: 1024},
		Bus:       BusConfig{Driver: "inprocess", QueueDepth: 1024, WorkerPoolSize: 16, OutboxPollEvery: time.Second},
		Saga:      SagaConfig{FallbackDomain: "_angzarr"},
		Cascade:   CascadeConfig{MaxDepth: 10, MaxConcurrentDispatch: 8, SyncTimeout: 30 * time.Second},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads a YAML document from path (if non-empty) layered over Default,
// then applies ANGZARR_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides mirrors client/go/server.go's TRANSPORT_TYPE/PORT/
// UDS_BASE_PATH convention, plus ANGZARR_STORAGE_DRIVER,
// ANGZARR_BUS_OUTBOX_ENABLED, ANGZARR_CASCADE_MAX_DEPTH,
// ANGZARR_UPCASTER_ADDRESS and LOG_LEVEL. Other fields have no environment
// override.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRANSPORT_TYPE"); v != "" {
		cfg.Transport.Type = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Transport.Port = v
	}
	if v := os.Getenv("UDS_BASE_PATH"); v != "" {
		cfg.Transport.UDSBasePath = v
	}
	if v := os.Getenv("ANGZARR_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("ANGZARR_BUS_OUTBOX_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Bus.OutboxEnabled = b
		}
	}
	if v := os.Getenv("ANGZARR_CASCADE_MAX_DEPTH"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Cascade.MaxDepth = uint32(n)
		}
	}
	if v := os.Getenv("ANGZARR_UPCASTER_ADDRESS"); v != "" {
		cfg.Upcaster.Address = v
		cfg.Upcaster.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
