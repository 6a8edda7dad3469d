// Package clients manages outbound gRPC connections from the coordination
// core to externally-deployed business logic: one AggregateService per
// domain, one ProjectorService per registered projector, one SagaService per
// registered saga, one ProcessManagerService per registered process
// manager, plus the optional UpcasterService. Connection lifecycle and
// transport selection (TCP vs Unix domain socket) follow the teacher
// client's conventions (client/go/client.go's formatEndpoint + grpc.NewClient
// pattern).
package clients

import (
	"fmt"
	"strings"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/angzarr-io/angzarr/internal/pb"
)

// formatEndpoint converts a bare endpoint into a gRPC dial target, detecting
// Unix domain socket paths the same way the client SDK does.
func formatEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") || strings.HasPrefix(endpoint, "./") {
		return "unix://" + endpoint
	}
	return endpoint
}

func dial(endpoint string) (*grpc.ClientConn, error) {
	return grpc.NewClient(formatEndpoint(endpoint), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// Registry owns one connection per registered endpoint and the typed
// service clients built on top of it. It is populated from configuration at
// startup (domain -> endpoint mappings) and is safe for concurrent read
// access once built.
type Registry struct {
	mu          sync.RWMutex
	conns       map[string]*grpc.ClientConn
	aggregates  map[string]pb.AggregateServiceClient
	projectors  map[string]pb.ProjectorServiceClient
	sagas       map[string]pb.SagaServiceClient
	processMgrs map[string]pb.ProcessManagerServiceClient
	upcasters   map[string]pb.UpcasterServiceClient
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:       make(map[string]*grpc.ClientConn),
		aggregates:  make(map[string]pb.AggregateServiceClient),
		projectors:  make(map[string]pb.ProjectorServiceClient),
		sagas:       make(map[string]pb.SagaServiceClient),
		processMgrs: make(map[string]pb.ProcessManagerServiceClient),
		upcasters:   make(map[string]pb.UpcasterServiceClient),
	}
}

func (r *Registry) connFor(key, endpoint string) (*grpc.ClientConn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[key]; ok {
		return c, nil
	}
	c, err := dial(endpoint)
	if err != nil {
		return nil, fmt.Errorf("clients: dial %s at %s: %w", key, endpoint, err)
	}
	r.conns[key] = c
	return c, nil
}

// RegisterAggregate wires domain's business logic endpoint.
func (r *Registry) RegisterAggregate(domain, endpoint string) error {
	c, err := r.connFor("aggregate/"+domain, endpoint)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.aggregates[domain] = pb.NewAggregateServiceClient(c)
	r.mu.Unlock()
	return nil
}

// RegisterProjector wires a named projector's endpoint.
func (r *Registry) RegisterProjector(name, endpoint string) error {
	c, err := r.connFor("projector/"+name, endpoint)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.projectors[name] = pb.NewProjectorServiceClient(c)
	r.mu.Unlock()
	return nil
}

// RegisterSaga wires a named saga's endpoint.
func (r *Registry) RegisterSaga(name, endpoint string) error {
	c, err := r.connFor("saga/"+name, endpoint)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.sagas[name] = pb.NewSagaServiceClient(c)
	r.mu.Unlock()
	return nil
}

// RegisterProcessManager wires a named process manager's endpoint.
func (r *Registry) RegisterProcessManager(name, endpoint string) error {
	c, err := r.connFor("pm/"+name, endpoint)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.processMgrs[name] = pb.NewProcessManagerServiceClient(c)
	r.mu.Unlock()
	return nil
}

// RegisterUpcaster wires a domain's upcaster endpoint.
func (r *Registry) RegisterUpcaster(domain, endpoint string) error {
	c, err := r.connFor("upcaster/"+domain, endpoint)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.upcasters[domain] = pb.NewUpcasterServiceClient(c)
	r.mu.Unlock()
	return nil
}

// Aggregate returns the business logic client for domain, or (nil, false)
// if no handler is registered — the coordinator surfaces this as
// UNAVAILABLE.
func (r *Registry) Aggregate(domain string) (pb.AggregateServiceClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.aggregates[domain]
	return c, ok
}

func (r *Registry) Projector(name string) (pb.ProjectorServiceClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.projectors[name]
	return c, ok
}

func (r *Registry) Saga(name string) (pb.SagaServiceClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sagas[name]
	return c, ok
}

func (r *Registry) ProcessManager(name string) (pb.ProcessManagerServiceClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.processMgrs[name]
	return c, ok
}

func (r *Registry) Upcaster(domain string) (pb.UpcasterServiceClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.upcasters[domain]
	return c, ok
}

// Close tears down every underlying connection.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, c := range r.conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
