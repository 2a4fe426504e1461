package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/urfave/cli/v2"

	"github.com/lottolabs/sortitio/internal/config"
	"github.com/lottolabs/sortitio/internal/http_api"
	"github.com/lottolabs/sortitio/internal/ledger"
	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/internal/registry"
	"github.com/lottolabs/sortitio/internal/repository"
	"github.com/lottolabs/sortitio/internal/sortitio"
	"github.com/lottolabs/sortitio/internal/wallet"
	"github.com/lottolabs/sortitio/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "sortitio",
		Usage: "Sortitio keeps a lottery program's on-chain state in sync and submits user intents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rpc-url", Aliases: []string{"r"}, Usage: "Ledger RPC endpoint URL"},
			&cli.StringFlag{Name: "program-id", Aliases: []string{"p"}, Usage: "Lottery program address"},
			&cli.StringFlag{Name: "commitment", Aliases: []string{"c"}, Usage: "Commitment level (processed, confirmed, finalized)"},
			&cli.StringFlag{Name: "keypair", Aliases: []string{"k"}, Usage: "Path to the signing keypair file"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"P"}, Usage: "HTTP API port"},
			&cli.StringFlag{Name: "history-db", Aliases: []string{"H"}, Usage: "Path to the history cache database"},
			&cli.StringFlag{Name: "token-registry-url", Aliases: []string{"t"}, Usage: "Token registry URL"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("program-id") {
		cfg.ProgramID = c.String("program-id")
	}
	if c.IsSet("commitment") {
		cfg.Commitment = c.String("commitment")
	}
	if c.IsSet("keypair") {
		cfg.KeypairPath = c.String("keypair")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("history-db") {
		cfg.HistoryDBPath = c.String("history-db")
	}
	if c.IsSet("token-registry-url") {
		cfg.TokenRegistryURL = c.String("token-registry-url")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize ledger client
	ledgerClient := ledger.NewClient(cfg.RPCURL, cfg.Program(), rpc.CommitmentType(cfg.Commitment), appLogger.Named("ledger"))

	// Initialize wallet; without one the client runs in read-only mode
	var signer models.WalletService
	if cfg.KeypairPath != "" {
		keypair, err := wallet.NewFromFile(cfg.KeypairPath)
		if err != nil {
			return fmt.Errorf("failed to load wallet: %v", err)
		}
		signer = keypair
		appLogger.Infow("Wallet loaded", "address", keypair.PublicKey())
	} else {
		appLogger.Info("No keypair configured, running in read-only mode")
	}

	// Initialize history cache
	var repo models.HistoryRepository
	if cfg.HistoryDBPath != "" {
		repo, err = repository.NewSqliteDB(cfg.HistoryDBPath, appLogger.Named("history"))
		if err != nil {
			return fmt.Errorf("failed to open history cache: %v", err)
		}
		defer repo.Close()
	}

	// Initialize token registry
	var mints models.MintResolver
	if cfg.TokenRegistryURL != "" {
		registrySvc := registry.NewService(cfg.TokenRegistryURL, appLogger.Named("registry"))
		defer registrySvc.Stop()
		mints = registrySvc
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create the client application
	clientApp := sortitio.New(ledgerClient, signer, repo, mints, cfg.Program(), appLogger)

	apiServer := http_api.NewHTTPServer(clientApp, cfg.APIPort, appLogger.Named("http"))

	go apiServer.Start()
	defer func() {
		if err := apiServer.Shutdown(); err != nil {
			appLogger.Errorw("HTTP server shutdown failed", "err", err)
		}
	}()

	// Start the synchronization loop; blocks until the context is cancelled
	clientApp.Start(ctx)

	return nil
}
