// Package server runs the HTTP API and a gRPC health endpoint on one port.
// cmux routes HTTP/2 connections carrying content-type application/grpc to
// the gRPC server and everything else to net/http.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ShutdownTimeout bounds how long in-flight requests get after ctx is done.
const ShutdownTimeout = 20 * time.Second

// Serve blocks until ctx is cancelled or one of the servers fails. On
// cancellation the health service flips to NOT_SERVING before anything stops
// accepting, so probes see the drain. A nil return means a clean shutdown.
func Serve(ctx context.Context, lis net.Listener, handler http.Handler, logger *slog.Logger) error {
	m := cmux.New(lis)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a live run waits on two upstreams
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 3)
	go func() { errc <- wrap("grpc", gs.Serve(grpcL)) }()
	go func() { errc <- wrap("http", srv.Serve(httpL)) }()
	go func() { errc <- wrap("mux", m.Serve()) }()

	logger.Info("server listening", "addr", lis.Addr().String())

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errc:
		logger.Error("server stopped unexpectedly", "error", serveErr)
	}

	hs.Shutdown()
	// Closing the root listener ends m.Serve, which closes both matched
	// listeners and unblocks the two Serve loops.
	_ = lis.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("http shutdown: %w", err))
	}

	stopped := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		gs.Stop()
	}

	logger.Info("shutdown complete")
	return serveErr
}

// wrap drops the errors every server returns on an orderly close.
func wrap(name string, err error) error {
	switch {
	case err == nil,
		errors.Is(err, http.ErrServerClosed),
		errors.Is(err, grpc.ErrServerStopped),
		errors.Is(err, cmux.ErrListenerClosed),
		errors.Is(err, net.ErrClosed):
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
