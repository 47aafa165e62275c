package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"centy/internal/daemonconfig"
	"centy/internal/logging"
	"centy/internal/registry"
	"centy/internal/rpcserver"
	"centy/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		grpcAddr    string
		grpcWebAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the centy daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(grpcAddr, grpcWebAddr)
		},
	}
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "Override the gRPC listen address (default from ~/.centy/.centy-daemon.yaml)")
	cmd.Flags().StringVar(&grpcWebAddr, "grpc-web-addr", "", "Override the grpc-web listen address (default from ~/.centy/.centy-daemon.yaml)")
	return cmd
}

func runServe(grpcAddrOverride, grpcWebAddrOverride string) error {
	logger, err := logging.New()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	homeDir, err := registry.HomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}
	if err := os.MkdirAll(homeDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", homeDir, err)
	}

	daemonCfg, err := daemonconfig.Load(homeDir)
	if err != nil {
		return fmt.Errorf("loading daemon config: %w", err)
	}
	if grpcAddrOverride != "" {
		daemonCfg.GRPCAddr = grpcAddrOverride
	}
	if grpcWebAddrOverride != "" {
		daemonCfg.GRPCWebAddr = grpcWebAddrOverride
	}

	svc := service.New(homeDir, DaemonVersion, logger)
	control := make(chan rpcserver.ControlSignal, 1)
	srv := rpcserver.New(rpcserver.Config{
		GRPCAddr:      daemonCfg.GRPCAddr,
		GRPCWebAddr:   daemonCfg.GRPCWebAddr,
		AllowedOrigin: daemonCfg.AllowedOrigin,
	}, svc, logger, control)

	banner := fmt.Sprintf("centyd %s listening on %s (grpc) / %s (grpc-web)", DaemonVersion, daemonCfg.GRPCAddr, daemonCfg.GRPCWebAddr)
	fmt.Println(successColor(banner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx) }()

	select {
	case sig := <-control:
		logger.Infow("control signal received", "kind", sig.Kind)
		cancel()
	case <-osSignals:
		logger.Info("received interrupt, shutting down")
		cancel()
	case err := <-errCh:
		return err
	}

	return <-errCh
}
