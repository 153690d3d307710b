// Package api hosts the stockscope HTTP API and a gRPC health endpoint,
// and shuts both down gracefully when the context ends.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"stockscope/internal/config"
)

// ServiceName is the name reported by the gRPC health service.
const ServiceName = "stockscope"

const shutdownTimeout = 10 * time.Second

// Server is the main API server that hosts HTTP and gRPC endpoints.
type Server struct {
	cfg     config.Server
	handler http.Handler
	log     *slog.Logger

	health *health.Server
}

// NewServer creates a Server that serves handler over HTTP.
func NewServer(cfg config.Server, handler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		log:     log.With("component", "api"),
		health:  health.NewServer(),
	}
}

// HTTPAddr is the HTTP listen address.
func (s *Server) HTTPAddr() string {
	return net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
}

// GRPCAddr is the gRPC listen address, or "" when gRPC is disabled.
func (s *Server) GRPCAddr() string {
	if s.cfg.GRPCPort <= 0 {
		return ""
	}
	return net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.GRPCPort))
}

// ListenAndServe opens the configured listeners and serves until ctx is
// cancelled or a listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.HTTPAddr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.HTTPAddr(), err)
	}

	var grpcLn net.Listener
	if addr := s.GRPCAddr(); addr != "" {
		grpcLn, err = net.Listen("tcp", addr)
		if err != nil {
			httpLn.Close()
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
	}
	return s.Serve(ctx, httpLn, grpcLn)
}

// Serve serves HTTP on httpLn and, when grpcLn is non-nil, the gRPC health
// service on grpcLn. It blocks until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, httpLn, grpcLn net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var grpcSrv *grpc.Server
	if grpcLn != nil {
		grpcSrv = grpc.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, s.health)
		reflection.Register(grpcSrv)
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("http server listening", "addr", httpLn.Addr().String())
		if err := httpSrv.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	if grpcSrv != nil {
		g.Go(func() error {
			s.log.Info("grpc server listening", "addr", grpcLn.Addr().String())
			if err := grpcSrv.Serve(grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serving grpc: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
