package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BAPNuSigma/StockAI/internal/api"
	"github.com/BAPNuSigma/StockAI/internal/app"
	"github.com/BAPNuSigma/StockAI/internal/config"
	"github.com/BAPNuSigma/StockAI/internal/metrics"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the report-building HTTP server",
		Long:  "Serve report builds over HTTP with health and metrics endpoints",
		RunE:  runServe,
	}
	cmd.Flags().String("host", "", "Listen host, defaults from config")
	cmd.Flags().Int("port", 0, "Listen port, defaults from config")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	setLogLevel(cmd)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	builder, err := app.NewBuilder(cfg, metrics.Default(), log.Logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := api.NewServer(addr, builder, log.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
