// Command server runs the digital-asset query gateway: a catalog of DAS
// read operations exposed over an SSE push channel and an HTTP request
// channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/assetgate/assetgate/internal/catalog"
	"github.com/assetgate/assetgate/internal/config"
	"github.com/assetgate/assetgate/internal/das"
	"github.com/assetgate/assetgate/internal/docs"
	"github.com/assetgate/assetgate/internal/gateway"
	"github.com/assetgate/assetgate/internal/logging"
	"github.com/assetgate/assetgate/internal/registry"
	"github.com/assetgate/assetgate/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "assetgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// A .env file is optional; ignore its absence.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewSlogLogger(cfg.Server.LogLevel)
	logger.Info("Starting gateway.",
		"name", cfg.Server.Name,
		"endpoint", cfg.RPC.Endpoint,
		"portFloor", cfg.Server.PortFloor)

	querier, err := das.NewClient(cfg.RPC.Endpoint, cfg.RPC.APIKey, logger)
	if err != nil {
		return err
	}
	fetcher := docs.NewFetcher(logger)

	reg := registry.New(logger)
	// A registration conflict is a programming defect; refuse to start.
	if err := catalog.Register(reg, querier, fetcher); err != nil {
		return err
	}
	logger.Info("Catalog registered.",
		"tools", len(reg.Tools()),
		"resources", len(reg.Resources()),
		"prompts", len(reg.Prompts()))

	transport := session.NewTransport(reg, logger)
	server := gateway.New(reg, transport, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg.Server.PortFloor)
}
