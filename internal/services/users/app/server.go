// Package server wires the users runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	userv1 "github.com/louisbranch/recordmesh/api/gen/go/user/v1"
	"github.com/louisbranch/recordmesh/internal/platform/bus"
	usersservice "github.com/louisbranch/recordmesh/internal/services/users/api/grpc/users"
	"github.com/louisbranch/recordmesh/internal/services/users/events"
	"github.com/louisbranch/recordmesh/internal/services/users/storage/memory"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Server hosts the users gRPC API and event publisher lifecycle.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	publisher  *bus.Publisher
}

// New creates a configured users server listening on the provided port.
// An empty broker disables event publication.
func New(port int, broker string) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port), broker)
}

// NewWithAddr creates a configured users server for the provided address.
func NewWithAddr(addr, broker string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	var publisher *bus.Publisher
	var eventPublisher usersservice.Publisher
	if broker != "" {
		publisher = bus.NewPublisher(broker, events.Topic)
		eventPublisher = publisher
	} else {
		log.Printf("no broker configured, user event publishing disabled")
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	apiService := usersservice.NewService(memory.New(), eventPublisher)
	healthServer := health.NewServer()
	userv1.RegisterUserServiceServer(grpcServer, apiService)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("user.v1.UserService", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		publisher:  publisher,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a users server until context cancellation.
func Run(ctx context.Context, port int, broker string) error {
	server, err := New(port, broker)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("users server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close releases users server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Printf("close user event publisher: %v", err)
		}
	}
}
