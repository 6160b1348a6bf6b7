package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielpatrickdp/launch-gate/internal/config"
	"github.com/danielpatrickdp/launch-gate/internal/host"
	"github.com/danielpatrickdp/launch-gate/internal/remote"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

func newServeCmd() *cobra.Command {
	var addr, statusPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a status document over gRPC",
		Long: `Serve answers launchgate.v1.StatusService/FetchStatus with the status JSON file,
re-read on every request so it can be edited while the server runs.`,
		Example: `  launchgate serve --status status.json --addr :7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, statusPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":7070", "Listen address")
	cmd.Flags().StringVar(&statusPath, "status", "", "Status JSON file (defaults to status_file from config)")

	return cmd
}

func runServe(ctx context.Context, addr, statusPath string) error {
	logger := newLogger()
	if statusPath == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		statusPath = cfg.StatusFile
	}
	if _, err := os.Stat(statusPath); err != nil {
		return fmt.Errorf("status file: %w", err)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := grpc.NewServer()
	fetcher := host.FileFetcher{Path: statusPath}
	remote.RegisterStatusServer(srv, fetcher.Fetch)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	logger.Info("status server listening", "addr", lis.Addr().String(), "status", statusPath)
	return srv.Serve(lis)
}
