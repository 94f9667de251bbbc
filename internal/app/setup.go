package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fees"
	"github.com/yiinote/ethereum-sdk/internal/fulfill"
	"github.com/yiinote/ethereum-sdk/internal/orderbook"
	"github.com/yiinote/ethereum-sdk/internal/royalty"
	"github.com/yiinote/ethereum-sdk/internal/storage"
	"github.com/yiinote/ethereum-sdk/pkg/cache"
	"github.com/yiinote/ethereum-sdk/pkg/config"
	"github.com/yiinote/ethereum-sdk/pkg/healthprobe"
	"github.com/yiinote/ethereum-sdk/pkg/httpserver"
	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	provider, err := wallet.NewEthProvider(ctx, &wallet.Config{
		RPCURL:        cfg.EthRPCURL,
		PrivateKeyHex: cfg.WalletPrivateKey,
		Logger:        logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup wallet provider: %w", err)
	}

	resolver, err := setupFeeResolver(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup fee resolver: %w", err)
	}

	store, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	fulfiller, err := setupFulfiller(cfg, logger, provider, resolver, store)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup fulfiller: %w", err)
	}

	obClient := orderbook.NewClient(cfg.OrderBookBaseURL, logger)

	var stream *orderbook.Stream
	if len(opts.Collections) > 0 {
		stream = orderbook.NewStream(orderbook.StreamConfig{
			URL:                   cfg.OrderBookWSURL,
			DialTimeout:           cfg.WSDialTimeout,
			PongTimeout:           cfg.WSPongTimeout,
			PingInterval:          cfg.WSPingInterval,
			ReconnectInitialDelay: cfg.WSReconnectInitialDelay,
			ReconnectMaxDelay:     cfg.WSReconnectMaxDelay,
			ReconnectBackoffMult:  cfg.WSReconnectBackoffMult,
			EventBufferSize:       cfg.WSEventBufferSize,
			Logger:                logger,
		})
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Orders:        obClient,
		Quoter:        fulfiller,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		provider:      provider,
		fulfiller:     fulfiller,
		obClient:      obClient,
		stream:        stream,
		store:         store,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupFeeResolver(cfg *config.Config, logger *zap.Logger) (fees.Resolver, error) {
	resolver := fees.NewHTTPResolver(cfg.FeeConfigURL, logger)
	if cfg.FeeCacheTTL <= 0 {
		return resolver, nil
	}

	feeCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create fee cache: %w", err)
	}

	return fees.NewCachedResolver(resolver, feeCache, cfg.FeeCacheTTL), nil
}

func setupFulfiller(
	cfg *config.Config,
	logger *zap.Logger,
	provider *wallet.EthProvider,
	resolver fees.Resolver,
	store storage.Storage,
) (*fulfill.Fulfiller, error) {
	royalties, err := royalty.NewEthRegistry(
		provider.Client(),
		common.HexToAddress(cfg.RoyaltiesRegistryAddr),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("create royalties registry: %w", err)
	}

	raribleHandler, err := fulfill.NewRaribleHandler(&fulfill.RaribleConfig{
		Resolver:  resolver,
		Royalties: royalties,
		Provider:  provider,
		Exchange:  common.HexToAddress(cfg.ExchangeV2Address),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create rarible handler: %w", err)
	}

	seaportHandler, err := fulfill.NewSeaportHandler(&fulfill.SeaportConfig{
		Resolver:     resolver,
		Provider:     provider,
		Exchange:     common.HexToAddress(cfg.SeaportAddress),
		FeeRecipient: common.HexToAddress(cfg.ProtocolFeeRecipient),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create seaport handler: %w", err)
	}

	looksrareHandler, err := fulfill.NewLooksRareHandler(&fulfill.LooksRareConfig{
		Resolver: resolver,
		Provider: provider,
		Caller:   provider.Client(),
		Exchange: common.HexToAddress(cfg.LooksRareAddress),
		Wrapper:  common.HexToAddress(cfg.ExchangeWrapperAddress),
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create looksrare handler: %w", err)
	}

	return fulfill.New(&fulfill.Config{
		Provider: provider,
		Handlers: map[types.Protocol]fulfill.Handler{
			types.ProtocolRaribleV2: raribleHandler,
			types.ProtocolSeaport:   seaportHandler,
			types.ProtocolLooksRare: looksrareHandler,
		},
		Storage: store,
		Logger:  logger,
	}), nil
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

// Fulfiller exposes the engine for callers embedding the app.
func (a *App) Fulfiller() *fulfill.Fulfiller {
	return a.fulfiller
}

// OrderBook exposes the order book client.
func (a *App) OrderBook() *orderbook.Client {
	return a.obClient
}
