package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"codeassist/internal/config"
	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

// Server is the core process: the gRPC account and state services plus the
// HTTP endpoint that receives forwarded OAuth callbacks.
type Server struct {
	cfg     config.CodeAssistConfig
	store   *StateStore
	pending *PendingLogins
	account *AccountService

	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
}

// NewServer wires the core services for cfg.
func NewServer(cfg config.CodeAssistConfig) (*Server, error) {
	store, err := NewStateStore(cfg.Core.StateFile)
	if err != nil {
		return nil, err
	}

	pending := NewPendingLogins(cfg.Auth.CallbackIdleTimeout)
	account := NewAccountService(cfg.Provider, store, pending)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(loggingUnaryInterceptor),
		grpc.ChainStreamInterceptor(loggingStreamInterceptor),
	)
	corerpc.RegisterAccountServiceServer(grpcServer, account)
	corerpc.RegisterStateServiceServer(grpcServer, NewStateService(store))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	mux := http.NewServeMux()
	mux.Handle(CallbackPath, NewCallbackHandler(account))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &Server{
		cfg:        cfg,
		store:      store,
		pending:    pending,
		account:    account,
		grpcServer: grpcServer,
		health:     healthServer,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe binds the configured addresses and serves until ctx is
// cancelled. ready, if non-nil, is called once both listeners are bound.
func (s *Server) ListenAndServe(ctx context.Context, ready func()) error {
	grpcListener, err := net.Listen("tcp", s.cfg.Core.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Core.Address, err)
	}
	httpListener, err := net.Listen("tcp", s.cfg.Core.HTTPAddress)
	if err != nil {
		grpcListener.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Core.HTTPAddress, err)
	}

	if ready != nil {
		ready()
	}
	return s.Serve(ctx, grpcListener, httpListener)
}

// Serve serves on the given listeners until ctx is cancelled or either
// server fails.
func (s *Server) Serve(ctx context.Context, grpcListener, httpListener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Core", "gRPC listening on %s", grpcListener.Addr())
		if err := s.grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logging.Info("Core", "OAuth callback endpoint on http://%s%s", httpListener.Addr(), CallbackPath)
		if err := s.httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return g.Wait()
}

func (s *Server) shutdown() {
	logging.Info("Core", "Shutting down")
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Core", "HTTP shutdown: %v", err)
	}

	// Open auth status streams would block GracefulStop indefinitely.
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}

	s.pending.Stop()
}

// Store returns the server's state store.
func (s *Server) Store() *StateStore {
	return s.store
}
