package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/authority"
	"github.com/sproutfund/protocol-core/internal/campaign"
	"github.com/sproutfund/protocol-core/internal/chain"
	"github.com/sproutfund/protocol-core/internal/config"
	"github.com/sproutfund/protocol-core/internal/feesplit"
	"github.com/sproutfund/protocol-core/internal/logger"
	"github.com/sproutfund/protocol-core/internal/messaging"
	ethprovider "github.com/sproutfund/protocol-core/internal/providers/ethereum"
	"github.com/sproutfund/protocol-core/internal/providers/jetstream"
	"github.com/sproutfund/protocol-core/internal/providers/memory"
	"github.com/sproutfund/protocol-core/internal/registry"
	"github.com/sproutfund/protocol-core/internal/relay"
	"github.com/sproutfund/protocol-core/internal/store"
	"github.com/sproutfund/protocol-core/internal/store/schema"
	"github.com/sproutfund/protocol-core/internal/vault"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadNodeConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "protocol-node",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Protocol Node")

	// Connect to the operation journal database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	if err := db.AutoMigrate(&schema.OperationRecord{}); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate operation journal", zap.Error(err))
	}
	journal := store.NewPGStore(db)
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	fsAdapter := adapter.NewFileSystem()
	natsJS := adapter.NewNatsJetStream()

	// Initialize NATS publisher
	var sinks []messaging.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := jetstream.NewPublisher(jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, natsJS, jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer natsPublisher.Close()
		sinks = append(sinks, natsPublisher)
		logger.InfoCtx(ctx, "Connected to NATS JetStream")
	}

	// Protocol identities
	owner := common.HexToAddress(cfg.Protocol.OwnerAddress)
	treasury := common.HexToAddress(cfg.Protocol.TreasuryAddress)
	vaultAddr := common.HexToAddress(cfg.Protocol.VaultAddress)
	factoryAddr := common.HexToAddress(cfg.Protocol.FactoryAddress)

	// Settlement always runs on the in-process ledger; the node carries no
	// signing key. A live Ethereum endpoint, when configured, serves the
	// registry's contract-existence and decimals probes instead of the
	// in-process ledger.
	memBackend := memory.NewBackend()
	memPool := memory.NewLendingPool(memBackend, common.HexToAddress(cfg.Ethereum.LendingPoolAddress))
	memPool.BindSupplier(vaultAddr)

	registryBackend := chain.TokenBackend(memBackend)
	if cfg.Ethereum.RPCURL != "" {
		ethDialer := adapter.NewEthClientDialer()
		ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
		}
		defer ethClient.Close()
		ethBackend, err := ethprovider.NewBackend(ethClient)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create Ethereum backend", zap.Error(err))
		}
		registryBackend = ethBackend
		logger.InfoCtx(ctx, "Connected to Ethereum RPC", zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}

	// Core protocol services
	auth, err := authority.New(owner, cfg.Protocol.GracePeriodDays, clockAdapter, nil)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create authority", zap.Error(err))
	}
	eventRelay := relay.New(auth, journal, jsonAdapter, clockAdapter, sinks...)
	auth.SetRecorder(eventRelay)

	tokenRegistry := registry.New(auth, registryBackend, clockAdapter, eventRelay)

	splitter, err := feesplit.New(auth, cfg.Protocol.FeeShareBps, treasury, clockAdapter, eventRelay)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create fee splitter", zap.Error(err))
	}

	yieldVault, err := vault.New(vaultAddr, tokenRegistry, splitter, memPool, memBackend, clockAdapter, eventRelay)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create vault", zap.Error(err))
	}

	factory, err := campaign.NewFactory(campaign.FactoryConfig{
		Address:   factoryAddr,
		Authority: auth,
		Registry:  tokenRegistry,
		Vault:     yieldVault,
		Relay:     eventRelay,
		Backend:   memBackend,
		Clock:     clockAdapter,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create campaign factory", zap.Error(err))
	}
	if err := eventRelay.AuthorizeFactory(ctx, owner, factory.Address()); err != nil {
		logger.FatalCtx(ctx, "Failed to authorize factory on relay", zap.Error(err))
	}

	// Seed the token registry from the genesis token list
	if cfg.Protocol.TokenListPath != "" {
		loader := registry.NewGenesisLoader(fsAdapter, jsonAdapter)
		list, err := loader.Parse(cfg.Protocol.TokenListPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to parse token list", zap.Error(err), zap.String("path", cfg.Protocol.TokenListPath))
		}
		// The settlement ledgers and pool reserves are created up front for
		// every genesis token.
		for _, entry := range list.Tokens {
			decimals := entry.Decimals
			if decimals == 0 {
				decimals = 18
			}
			token := memBackend.CreateToken(common.HexToAddress(entry.Address), decimals)
			if _, err := memPool.CreateReserve(ctx, token.Address()); err != nil {
				logger.FatalCtx(ctx, "Failed to create reserve", zap.Error(err), zap.String("token", entry.Address))
			}
		}
		if err := loader.Load(ctx, cfg.Protocol.TokenListPath, tokenRegistry, owner); err != nil {
			logger.FatalCtx(ctx, "Failed to seed token registry", zap.Error(err), zap.String("path", cfg.Protocol.TokenListPath))
		}
		logger.InfoCtx(ctx, "Token registry seeded", zap.Int("tokens", len(list.Tokens)))
	}

	logger.InfoCtx(ctx, "Protocol node ready",
		zap.String("owner", owner.Hex()),
		zap.String("treasury", treasury.Hex()),
		zap.String("factory", factory.Address().Hex()),
		zap.Uint64("fee_share_bps", cfg.Protocol.FeeShareBps),
		zap.Int("supported_tokens", len(tokenRegistry.GetAllSupportedTokens())))

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case <-ctx.Done():
	}

	// Give some time for graceful shutdown
	time.Sleep(time.Second)

	logger.Info("Protocol node stopped")
}
