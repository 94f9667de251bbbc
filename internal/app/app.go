// Package app wires configuration, the wallet provider, protocol handlers
// and the operational HTTP surface into a running service.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fulfill"
	"github.com/yiinote/ethereum-sdk/internal/orderbook"
	"github.com/yiinote/ethereum-sdk/internal/storage"
	"github.com/yiinote/ethereum-sdk/pkg/config"
	"github.com/yiinote/ethereum-sdk/pkg/healthprobe"
	"github.com/yiinote/ethereum-sdk/pkg/httpserver"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	provider      *wallet.EthProvider
	fulfiller     *fulfill.Fulfiller
	obClient      *orderbook.Client
	stream        *orderbook.Stream
	store         storage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	// Collections to subscribe on the order event stream. Empty disables
	// the stream.
	Collections []string
}
