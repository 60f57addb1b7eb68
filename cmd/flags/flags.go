// Package flags holds CLI flags and setup helpers shared by the papervault
// binaries.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/common"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/httpserver"
)

// SetupLogger builds the service logger from the log-* flags.
func SetupLogger(cCtx *cli.Context, service string) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Service: service,
		Version: common.Version,
	})

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigureServer builds the HTTP server config from the server flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var LedgerFlag = &cli.StringFlag{
	Name:  "ledger",
	Value: "mock",
	Usage: "integrity ledger backend: 'eth' or 'mock'",
}

var RpcAddrFlag = &cli.StringFlag{
	Name:  "rpc-addr",
	Value: "http://127.0.0.1:8545",
	Usage: "address to connect to the integrity ledger RPC",
}

var AnchorKeyFlag = &cli.StringFlag{
	Name:  "anchor-key",
	Usage: "hex-encoded private key signing anchoring transactions (required with --ledger eth)",
}

var AnchorAddressFlag = &cli.StringFlag{
	Name:  "anchor-address",
	Usage: "address receiving anchoring transactions (required with --ledger eth)",
}

var StorageFlag = &cli.StringSliceFlag{
	Name:  "storage",
	Value: cli.NewStringSlice("memory://"),
	Usage: "storage backend URIs (file://, s3://, ipfs://, vault://, memory://); repeat for redundancy",
}

var MaxRetriesFlag = &cli.IntFlag{
	Name:  "anchor-max-retries",
	Value: 5,
	Usage: "transient anchor failures before a record fails permanently",
}

var MaxResetsFlag = &cli.IntFlag{
	Name:  "anchor-max-resets",
	Value: 3,
	Usage: "operator resets allowed per failed anchor record",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}

var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}

var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

// CommonFlags are shared by every binary.
var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
}

// ServerFlags configure the papervault API server.
var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	MetricsAddrFlag,
	LedgerFlag,
	RpcAddrFlag,
	AnchorKeyFlag,
	AnchorAddressFlag,
	StorageFlag,
	MaxRetriesFlag,
	MaxResetsFlag,
	PprofFlag,
	DrainSecondsFlag,
}
