package api

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"stockscope/internal/config"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return ln
}

func TestServerAddrs(t *testing.T) {
	s := NewServer(config.Server{Host: "127.0.0.1", Port: 8080, GRPCPort: 9090}, http.NotFoundHandler(), nil)
	if got := s.HTTPAddr(); got != "127.0.0.1:8080" {
		t.Errorf("HTTPAddr() = %q, want %q", got, "127.0.0.1:8080")
	}
	if got := s.GRPCAddr(); got != "127.0.0.1:9090" {
		t.Errorf("GRPCAddr() = %q, want %q", got, "127.0.0.1:9090")
	}

	s = NewServer(config.Server{Host: "127.0.0.1", Port: 8080}, http.NotFoundHandler(), nil)
	if got := s.GRPCAddr(); got != "" {
		t.Errorf("GRPCAddr() with no port = %q, want empty", got)
	}
}

func TestServeHTTPAndHealth(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	s := NewServer(config.Server{}, handler, slog.New(slog.NewTextHandler(io.Discard, nil)))

	httpLn, grpcLn := listen(t), listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, httpLn, grpcLn) }()

	resp, err := http.Get("http://" + httpLn.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "hello" {
		t.Errorf("body = %q, want %q", body, "hello")
	}

	conn, err := grpc.NewClient(grpcLn.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	defer conn.Close()

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer checkCancel()
	hr, err := healthpb.NewHealthClient(conn).Check(checkCtx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if hr.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health status = %v, want SERVING", hr.Status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeWithoutGRPC(t *testing.T) {
	s := NewServer(config.Server{}, http.NotFoundHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, listen(t), nil) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
