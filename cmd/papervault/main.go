package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/anchor"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/anchor/ethledger"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/cmd/flags"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/httpserver"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/metrics"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/papervault"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/shareledger"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/storage"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/verifier"
)

func main() {
	app := &cli.App{
		Name:   "papervault",
		Usage:  "Serve the exam paper vault API: threshold-sealed papers with ledger-anchored integrity",
		Flags:  append(flags.ServerFlags, flags.CommonFlags...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx, "papervault")
	cfg := flags.ConfigureServer(cCtx, logger)

	m, registry := metrics.New("papervault")

	// Storage: one or more redundant backends behind a single interface.
	storageFactory := storage.NewStorageBackendFactory(logger)
	locations := make([]interfaces.StorageBackendLocation, 0)
	for _, uri := range cCtx.StringSlice(flags.StorageFlag.Name) {
		loc, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			logger.Error("Invalid storage URI", "uri", uri, "err", err)
			return err
		}
		locations = append(locations, loc)
	}
	backend, err := storageFactory.CreateMultiBackend(locations)
	if err != nil {
		logger.Error("Failed to create storage", "err", err)
		return err
	}

	// Integrity ledger: selected explicitly, never silently substituted.
	ledger, err := selectLedger(cCtx, logger)
	if err != nil {
		return err
	}
	logger.Info("Integrity ledger configured", "backend", ledger.Name())

	anchorCfg := anchor.DefaultConfig()
	anchorCfg.MaxRetries = cCtx.Int(flags.MaxRetriesFlag.Name)
	anchorCfg.MaxResets = cCtx.Int(flags.MaxResetsFlag.Name)

	anchorStore := anchor.NewMemoryStore()
	anchors := anchor.NewService(ledger, anchorStore, anchorCfg, logger, m)
	shares := shareledger.New(shareledger.NewMemoryStore(), logger)
	vault := papervault.New(shares, backend, logger, m)
	verify := verifier.New(anchorStore, logger, m)

	handler := httpserver.NewHandler(vault, anchors, verify, logger)
	server, err := httpserver.New(cfg, handler, registry)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server")
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	anchors.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}

func selectLedger(cCtx *cli.Context, logger *slog.Logger) (interfaces.IntegrityLedger, error) {
	switch cCtx.String(flags.LedgerFlag.Name) {
	case "eth":
		key := cCtx.String(flags.AnchorKeyFlag.Name)
		addr := cCtx.String(flags.AnchorAddressFlag.Name)
		if key == "" || addr == "" {
			return nil, errors.New("--anchor-key and --anchor-address are required with --ledger eth")
		}
		return ethledger.NewClient(context.Background(), ethledger.Config{
			RPCURL:        cCtx.String(flags.RpcAddrFlag.Name),
			PrivateKeyHex: key,
			AnchorAddress: addr,
		}, logger)
	case "mock":
		logger.Warn("Using in-process mock ledger; anchors are not externally verifiable")
		return anchor.NewMockLedger(), nil
	default:
		return nil, fmt.Errorf("invalid ledger backend: %s", cCtx.String(flags.LedgerFlag.Name))
	}
}
