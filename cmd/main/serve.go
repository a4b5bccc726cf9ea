package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-screener/src/grpc_control"
	"stock-screener/src/server"

	"github.com/google/subcommands"
)

type serveCmd struct {
	shutdownTimeout time.Duration
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API and the gRPC control server" }
func (*serveCmd) Usage() string {
	return `screener [-config <file>] serve [-shutdown-timeout <duration>]

  Opens storage and the result cache, then serves the HTTP API on port and
  the gRPC service on grpc_port (when set) until SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.shutdownTimeout, "shutdown-timeout", 10*time.Second, "how long in-flight requests get to finish on shutdown")
}

// -----------------------------------------------------------------------------

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)

	// 1. HTTP API
	httpServer := server.NewScreenerServer(a.config.MConfig, a.service, a.store, a.logger.Named("ScreenerServer"))
	go func() {
		errs <- httpServer.Start()
	}()

	// 2. gRPC Control Server
	grpcServer := grpc_control.NewGRPCServer(a.service, a.logger.Named("ControlService"))
	if port := a.config.GrpcPort; port > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", a.config.GrpcHost, port))
		if err != nil {
			a.logger.Error("failed to listen for gRPC: %v", err)
			return subcommands.ExitFailure
		}
		go func() {
			a.logger.Info("Starting gRPC Control Server on :%d", port)
			errs <- grpcServer.Serve(lis)
		}()
	}

	exit := subcommands.ExitSuccess
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down...")
	case err := <-errs:
		if err != nil {
			a.logger.Error("Server failed: %v", err)
			exit = subcommands.ExitFailure
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Warning("HTTP shutdown: %v", err)
	}
	return exit
}
