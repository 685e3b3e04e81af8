// Package server wires the progression runtime: rules, character storage,
// the gRPC API and the public rules endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	grpcmeta "github.com/louisbranch/d100/internal/platform/grpc/metadata"
	progressionservice "github.com/louisbranch/d100/internal/services/progression/api/grpc/progression"
	rulesapi "github.com/louisbranch/d100/internal/services/progression/api/http/rules"
	"github.com/louisbranch/d100/internal/services/progression/domain/engine"
	"github.com/louisbranch/d100/internal/services/progression/domain/rules"
	progressionsqlite "github.com/louisbranch/d100/internal/services/progression/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const httpShutdownTimeout = 5 * time.Second

// Config selects listeners, storage and rules for a progression server.
type Config struct {
	// GRPCAddr is the gRPC listen address, e.g. ":8090".
	GRPCAddr string
	// HTTPAddr is the rules endpoint listen address. Empty disables HTTP.
	HTTPAddr string
	// DBPath is the SQLite character database file.
	DBPath string
	// RulesPath overrides the embedded rules bundle when set.
	RulesPath string
}

// Server hosts the progression gRPC API, the rules endpoint and storage.
type Server struct {
	listener     net.Listener
	httpListener net.Listener
	grpcServer   *grpc.Server
	httpServer   *http.Server
	health       *health.Server
	store        *progressionsqlite.Store
	rules        *rules.Repository
}

// New creates a configured progression server. An invalid rules file stops
// startup.
func New(ctx context.Context, cfg Config) (*Server, error) {
	repo, err := rules.LoadOrDefault(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	store, err := openCharacterStore(ctx, cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	srv := &Server{
		listener: listener,
		store:    store,
		rules:    repo,
	}

	if strings.TrimSpace(cfg.HTTPAddr) != "" {
		mux, err := rulesapi.NewMux(repo)
		if err != nil {
			srv.Close()
			return nil, fmt.Errorf("build rules handler: %w", err)
		}
		httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			srv.Close()
			return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
		}
		srv.httpListener = httpListener
		srv.httpServer = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(grpcmeta.UnaryServerInterceptor(nil)),
	)
	apiService := progressionservice.NewService(engine.New(repo), store)
	healthServer := health.NewServer()
	progressionservice.RegisterProgressionServiceServer(grpcServer, apiService)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(progressionservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	srv.grpcServer = grpcServer
	srv.health = healthServer
	return srv, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the rules endpoint address, or "" when HTTP is disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// RulesVersion returns the version of the rules being served.
func (s *Server) RulesVersion() string {
	if s == nil || s.rules == nil {
		return ""
	}
	return s.rules.Version()
}

// Run creates and serves a progression server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs gRPC and HTTP until ctx is canceled or either fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("progression server listening at %v (rules %s)", s.listener.Addr(), s.rules.Version())
	serveErr := make(chan error, 2)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- fmt.Errorf("serve gRPC: %w", err)
			return
		}
		serveErr <- nil
	}()
	running := 1
	if s.httpServer != nil {
		log.Printf("rules endpoint listening at http://%v%s", s.httpListener.Addr(), rulesapi.RulesPath)
		running++
		go func() {
			if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("serve HTTP: %w", err)
				return
			}
			serveErr <- nil
		}()
	}

	var firstErr error
	select {
	case <-ctx.Done():
	case firstErr = <-serveErr:
		running--
	}

	s.shutdown()
	for ; running > 0; running-- {
		if err := <-serveErr; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) shutdown() {
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown rules endpoint: %v", err)
		}
		cancel()
	}
	s.grpcServer.GracefulStop()
}

// Close releases progression server resources.
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
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close progression store: %v", err)
		}
		s.store = nil
	}
}

func openCharacterStore(ctx context.Context, path string) (*progressionsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := progressionsqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open progression sqlite store: %w", err)
	}
	return store, nil
}
