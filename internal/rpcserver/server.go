// Package rpcserver is the transport layer: a gRPC server carrying the
// service façade's operations over a hand-declared ServiceDesc (JSON
// codec, no protoc step), wrapped for browser clients via grpc-web and
// CORS, with health and reflection registered alongside it. Kept
// intentionally thin: transport plumbing only, no business logic.
package rpcserver

import (
	"context"
	"net"
	"net/http"

	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"centy/internal/service"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// ServiceName is the hand-declared gRPC service name dispatched by
// ServiceDesc. No .proto file backs it; the JSON codec carries
// map[string]interface{} payloads directly.
const ServiceName = "centy.Centy"

// Config holds the listen addresses and CORS policy read from the
// daemon's local runtime settings (~/.centy/.centy-daemon.yaml).
type Config struct {
	GRPCAddr      string
	GRPCWebAddr   string
	AllowedOrigin []string
}

// Server bundles the gRPC server and its grpc-web/CORS-wrapped HTTP
// sibling, both dispatching onto the same Handler/Service pair.
type Server struct {
	cfg        Config
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	logger     *zap.SugaredLogger
	control    chan ControlSignal
}

// New builds a Server around svc. control, if non-nil, receives the
// Shutdown/Restart signal so the caller's Serve loop can react to it.
func New(cfg Config, svc *service.Service, logger *zap.SugaredLogger, control chan ControlSignal) *Server {
	grpcServer := grpc.NewServer()

	handler := NewHandler(svc, control)
	grpcServer.RegisterService(serviceDesc(), handler)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	wrapped := grpcweb.WrapServer(grpcServer,
		grpcweb.WithOriginFunc(func(origin string) bool {
			if len(cfg.AllowedOrigin) == 0 {
				return true
			}
			for _, allowed := range cfg.AllowedOrigin {
				if allowed == origin || allowed == "*" {
					return true
				}
			}
			return false
		}),
	)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigin,
		AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped.ServeHTTP(w, r)
	}))

	return &Server{
		cfg:        cfg,
		grpcServer: grpcServer,
		httpServer: &http.Server{Addr: cfg.GRPCWebAddr, Handler: corsHandler},
		health:     healthSrv,
		logger:     logger,
		control:    control,
	}
}

// Serve runs the gRPC and grpc-web/HTTP listeners until ctx is canceled,
// then stops both gracefully. Uses golang.org/x/sync/errgroup to join
// the listener goroutines and propagate the first error.
func (s *Server) Serve(ctx context.Context) error {
	grpcLis, err := net.Listen("tcp", s.cfg.GRPCAddr)
	if err != nil {
		return err
	}
	httpLis, err := net.Listen("tcp", s.cfg.GRPCWebAddr)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.Infow("grpc listening", "addr", s.cfg.GRPCAddr)
		return s.grpcServer.Serve(grpcLis)
	})
	group.Go(func() error {
		s.logger.Infow("grpc-web listening", "addr", s.cfg.GRPCWebAddr)
		if err := s.httpServer.Serve(httpLis); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		s.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		s.grpcServer.GracefulStop()
		return s.httpServer.Shutdown(context.Background())
	})

	return group.Wait()
}

// Stop forces both listeners down immediately, used when a clean
// GracefulStop has already been attempted and a caller needs to bail.
func (s *Server) Stop() {
	s.grpcServer.Stop()
	_ = s.httpServer.Close()
}
