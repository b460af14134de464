package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/app"
	"github.com/dmehra2102/todorpc/internal/infrastructure/config"
	"github.com/dmehra2102/todorpc/internal/infrastructure/storage"
	"github.com/dmehra2102/todorpc/internal/interceptors"
	"github.com/dmehra2102/todorpc/internal/transport/socket"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const (
	serviceName    = "todo-service"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.GetObservabilityConfig())
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting todo service",
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.StorageBackend),
	)

	obs := cfg.GetObservabilityConfig()
	if obs.EnableTracing {
		shutdown, err := initTracer(obs.OTLPEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := storage.Open(ctx, cfg.GetDatabaseConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	todoServer := app.NewTodoServiceServer(app.NewTodoService(repo, logger))
	srvCfg := cfg.GetServerConfig()

	grpcServer, err := initGRPCServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize gRPC server", zap.Error(err))
	}
	todov1.RegisterTodoServiceServer(grpcServer, todoServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(todov1.TodoService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	if srvCfg.EnableReflection {
		reflection.Register(grpcServer)
	}

	var socketOpts []socket.Option
	if cfg.JWTSecret != "" {
		socketOpts = append(socketOpts, socket.WithJWTSecret(cfg.JWTSecret))
	}
	if !cfg.IsProduction() {
		socketOpts = append(socketOpts, socket.WithCheckOrigin(func(*http.Request) bool { return true }))
	}
	socketServer := socket.NewServer(todoServer, logger, socketOpts...)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", srvCfg.HTTPPort),
		Handler:           newRouter(socketServer, healthServer, obs.EnableMetrics, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", srvCfg.Port))
	if err != nil {
		logger.Fatal("Failed to listen", zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server starting", zap.Int("port", srvCfg.Port))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", srvCfg.HTTPPort))
		var err error
		if srvCfg.TLSEnabled {
			err = httpServer.ListenAndServeTLS(srvCfg.TLSCertFile, srvCfg.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down gracefully...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	if err := socketServer.Close(); err != nil {
		logger.Warn("Failed to close socket connections", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Server stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	}
}

func initGRPCServer(cfg *config.Config, logger *zap.Logger) (*grpc.Server, error) {
	unary := []grpc.UnaryServerInterceptor{
		interceptors.LoggingInterceptor(logger),
		interceptors.RecoveryInterceptor(logger),
		interceptors.MetricsInterceptor(),
	}
	var stream []grpc.StreamServerInterceptor
	if cfg.JWTSecret != "" {
		unary = append(unary, interceptors.AuthInterceptor(cfg.JWTSecret))
		stream = append(stream, interceptors.StreamAuthInterceptor(cfg.JWTSecret))
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Minute,
			Time:                  5 * time.Minute,
			Timeout:               1 * time.Minute,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             1 * time.Minute,
			PermitWithoutStream: true,
		}),

		grpc.MaxRecvMsgSize(4 * 1024 * 1024),
		grpc.MaxSendMsgSize(4 * 1024 * 1024),

		grpc.StatsHandler(otelgrpc.NewServerHandler()),

		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	}

	if cfg.TLSEnabled {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	return grpc.NewServer(opts...), nil
}
