package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/swap-builder/internal/api"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve POST /v1/swap/build, GET /healthz and GET /metrics.

Example usage:
  swapbuilder serve --config configs/config.yaml
  SWAP_BUILDER_RPC_LIST=https://api.mainnet-beta.solana.com swapbuilder serve --listen :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address, overrides config")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Listen
	if listenAddr != "" {
		addr = listenAddr
	}
	srv := api.NewServer(addr, a.service, a.log.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.log.Info("📡 Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("Forced shutdown", zap.Error(err))
	}
	return nil
}
