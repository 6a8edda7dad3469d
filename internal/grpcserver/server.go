// Package grpcserver assembles the gateway's gRPC surface: the
// AggregateCoordinatorService/CommandGatewayService command ingress, the
// EventQueryService/EventStreamService read surface, and the
// SpeculativeService dry-run surface, plus health, reflection, and a
// grpc-gateway REST/JSON mux over the same handlers — generalizing
// client/go/server.go's CreateServer/RunServer transport selection from a
// single business-service registrar to the gateway's own multi-service bind.
package grpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/angzarr-io/angzarr/internal/aggregate"
	"github.com/angzarr-io/angzarr/internal/config"
	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/pb"
)

// commandGateway adapts aggregate.Coordinator.Handle to CommandGatewayService,
// the single-method public ingress the REST mux and external callers use
// instead of reaching into AggregateCoordinatorService's three-method surface
// directly.
type commandGateway struct {
	coord *aggregate.Coordinator
}

var _ pb.CommandGatewayServiceServer = (*commandGateway)(nil)

func (g *commandGateway) Execute(ctx context.Context, cmd *pb.CommandBook) (*pb.CommandResponse, error) {
	return g.coord.Handle(ctx, cmd)
}

// speculative adapts aggregate.Coordinator.DryRunHandle to SpeculativeService.
// SpeculateProjector/SpeculateSaga/SpeculateProcessManager are left
// unimplemented here: those speculative branches run against projector/saga/
// PM state this package has no handle on, and are deferred to whichever
// coordinator eventually owns a speculative-execution budget for them.
type speculative struct {
	pb.UnimplementedSpeculativeServiceServer
	coord *aggregate.Coordinator
}

var _ pb.SpeculativeServiceServer = (*speculative)(nil)

func (s *speculative) DryRunCommand(ctx context.Context, req *pb.DryRunRequest) (*pb.DryRunResponse, error) {
	return s.coord.DryRunHandle(ctx, req)
}

// EventQuery is satisfied directly by *query.Coordinator; declared here only
// to name the dependency this package binds against without importing
// internal/query for its own sake.
type EventQuery interface {
	pb.EventQueryServiceServer
	pb.EventStreamServiceServer
}

// Services bundles the coordinators this package wires into one gRPC server
// and REST mux.
type Services struct {
	Aggregate *aggregate.Coordinator
	Query     EventQuery
}

// Register binds every service in svc onto server, plus health and
// (optionally) reflection.
func Register(server *grpc.Server, svc Services, enableReflection bool) {
	pb.RegisterAggregateCoordinatorServiceServer(server, svc.Aggregate)
	pb.RegisterCommandGatewayServiceServer(server, &commandGateway{coord: svc.Aggregate})
	pb.RegisterSpeculativeServiceServer(server, &speculative{coord: svc.Aggregate})
	pb.RegisterEventQueryServiceServer(server, svc.Query)
	pb.RegisterEventStreamServiceServer(server, svc.Query)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("angzarr.gateway", grpc_health_v1.HealthCheckResponse_SERVING)

	if enableReflection {
		reflection.Register(server)
	}
}

// listen opens the gateway's listener per cfg.Transport, mirroring client/go's
// GetTransportConfig TCP/UDS selection but sourced from config.Config rather
// than re-reading the environment directly.
func listen(cfg config.TransportConfig) (net.Listener, func(), error) {
	if cfg.Type == "uds" {
		socketPath := cfg.UDSBasePath
		if socketPath == "" {
			socketPath = "/tmp/angzarr/gateway.sock"
		}
		if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create uds dir: %w", err)
		}
		_ = os.Remove(socketPath)
		l, err := net.Listen("unix", socketPath)
		if err != nil {
			return nil, nil, fmt.Errorf("listen uds %s: %w", socketPath, err)
		}
		cleanup := func() { _ = os.Remove(socketPath) }
		return l, cleanup, nil
	}

	port := cfg.Port
	if port == "" {
		port = "50250"
	}
	l, err := net.Listen("tcp", "[::]:"+port)
	if err != nil {
		return nil, nil, fmt.Errorf("listen tcp :%s: %w", port, err)
	}
	return l, func() {}, nil
}

// Run starts the gRPC server on cfg's transport, a grpc-gateway REST mux on
// the same services (invoked in-process, without dialing back), and blocks until ctx is
// cancelled (by SIGINT/SIGTERM if Run was called from RunUntilSignal), then
// drains both via GracefulStop/Shutdown.
func Run(ctx context.Context, cfg config.TransportConfig, svc Services, enableReflection bool, log zerolog.Logger) error {
	l, cleanup, err := listen(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := grpc.NewServer()
	Register(server, svc, enableReflection)

	_, restServer, err := newRESTGateway(cfg, svc)
	if err != nil {
		return fmt.Errorf("build rest gateway: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", l.Addr().String()).Str("transport", cfg.Type).Msg("grpc server listening")
		errCh <- server.Serve(l)
	}()
	if restServer != nil {
		go func() {
			log.Info().Str("addr", restServer.Addr).Msg("rest gateway listening")
			if err := restServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server exited with error")
		}
	}

	log.Info().Msg("shutting down gateway")
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		server.Stop()
	}
	if restServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = restServer.Shutdown(shutdownCtx)
	}
	return nil
}

// RunUntilSignal is Run wired to SIGINT/SIGTERM, the same lifecycle
// client/go's RunServer gives a single business service.
func RunUntilSignal(cfg config.TransportConfig, svc Services, enableReflection bool, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cfg, svc, enableReflection, log)
}

// newRESTGateway builds a grpc-gateway runtime.ServeMux exposing
// CommandGatewayService.Execute and EventQueryService's reads as REST/JSON,
// invoking svc's handlers in-process rather than dialing back into the gRPC
// server the mux sits beside — there is no protoc-generated *.pb.gw.go file
// in this tree to register against, so the handlers below are the hand-
// written analogue grpc-gateway's generator would otherwise have produced.
func newRESTGateway(cfg config.TransportConfig, svc Services) (*runtime.ServeMux, *http.Server, error) {
	if cfg.Type == "uds" {
		// REST transcoding needs an addressable TCP port; skip it for UDS
		// deployments, which are expected to be reached over gRPC directly.
		return nil, nil, nil
	}

	mux := runtime.NewServeMux()

	mux.HandlePath(http.MethodPost, "/v1/commands", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		var cmd pb.CommandBook
		if err := decodeJSONBody(r, &cmd); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		resp, err := svc.Aggregate.Handle(r.Context(), &cmd)
		if err != nil {
			writeJSONError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, resp)
	})

	mux.HandlePath(http.MethodPost, "/v1/events/query", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		var q pb.Query
		if err := decodeJSONBody(r, &q); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		book, err := svc.Query.GetEvents(r.Context(), &q)
		if err != nil {
			writeJSONError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, book)
	})

	mux.HandlePath(http.MethodGet, "/v1/domains/{domain}/roots", func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		resp, err := svc.Query.GetAggregateRoots(r.Context(), &pb.GetAggregateRootsRequest{Domain: pathParams["domain"]})
		if err != nil {
			writeJSONError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, resp)
	})

	restPort := restPortFor(cfg)
	server := &http.Server{
		Addr:              "[::]:" + restPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return mux, server, nil
}

// restPortFor derives the REST listener's port from the gRPC port so the two
// never collide without requiring a second config field for the common case.
func restPortFor(cfg config.TransportConfig) string {
	port := cfg.Port
	if port == "" {
		port = "50250"
	}
	if n, err := parsePort(port); err == nil {
		return fmt.Sprintf("%d", n+1)
	}
	return "8080"
}

func parsePort(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func decodeJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type restError struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(restError{Error: err.Error()})
}

// statusFromError maps a CoordinatorError's gRPC code to the equivalent HTTP
// status, the same mapping grpc-gateway's generated marshaler would apply to
// a genuine protoc-built service.
func statusFromError(err error) int {
	switch errs.CodeOf(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
