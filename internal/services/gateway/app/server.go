// Package server wires the gateway runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/louisbranch/recordmesh/internal/services/gateway/clients"
	"github.com/louisbranch/recordmesh/internal/services/gateway/graph"
	"github.com/louisbranch/recordmesh/internal/services/gateway/observer"
	"github.com/louisbranch/recordmesh/internal/services/gateway/rest"
)

const shutdownTimeout = 10 * time.Second

// Config carries the gateway's runtime settings.
type Config struct {
	Addr         string
	UsersAddr    string
	ProductsAddr string
	Broker       string
	DialTimeout  time.Duration
}

// Server hosts the gateway's resource and query surfaces plus the
// event observer.
type Server struct {
	echo     *echo.Echo
	listener net.Listener
	backends *clients.Backends
	observer *observer.Observer
}

// New dials the backend services and assembles the HTTP surface. The
// backends are a hard dependency; either dial failing fails startup.
// An empty broker disables event observation.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 30 * time.Second
	}

	backends, err := clients.Dial(ctx, cfg.UsersAddr, cfg.ProductsAddr, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		backends.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = listener

	rest.NewHandler(backends.Users(), backends.Products()).Register(e)
	graphHandler, err := graph.NewHandler(backends.Users(), backends.Products())
	if err != nil {
		_ = listener.Close()
		backends.Close()
		return nil, err
	}
	graphHandler.Register(e)

	var obs *observer.Observer
	if cfg.Broker != "" {
		obs = observer.New(cfg.Broker)
	} else {
		log.Printf("no broker configured, event observation disabled")
	}

	return &Server{
		echo:     e,
		listener: listener,
		backends: backends,
		observer: obs,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a gateway until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server and the event observer until context
// cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.backends.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	observerDone := make(chan struct{})
	if s.observer != nil {
		go func() {
			defer close(observerDone)
			if err := s.observer.Run(ctx); err != nil {
				log.Printf("event observer stopped: %v", err)
			}
		}()
	} else {
		close(observerDone)
	}

	log.Printf("gateway listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.echo.Start("")
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown gateway: %v", err)
		}
		<-observerDone
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		cancel()
		<-observerDone
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}
