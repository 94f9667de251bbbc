package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/orderbook"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run(collections []string) error {
	a.logger.Info("application-starting",
		zap.String("network", a.cfg.Network),
		zap.String("wallet", a.provider.From().Hex()),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents(collections)
	if err != nil {
		return err
	}

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

func (a *App) startComponents(collections []string) error {
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	if a.stream != nil {
		err := a.stream.Start()
		if err != nil {
			return fmt.Errorf("start order stream: %w", err)
		}

		err = a.stream.Subscribe(a.ctx, collections)
		if err != nil {
			return fmt.Errorf("subscribe to collections: %w", err)
		}

		a.wg.Add(1)
		go a.consumeOrderEvents()
	}

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// consumeOrderEvents drains the stream and logs order activity on the
// subscribed collections. Fill decisions stay with the API callers.
func (a *App) consumeOrderEvents() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		case event, ok := <-a.stream.Events():
			if !ok {
				return
			}

			switch event.EventType {
			case orderbook.EventOrderCancel:
				a.logger.Info("order-cancelled",
					zap.String("order-hash", event.OrderHash))
			default:
				a.logger.Info("order-updated",
					zap.String("order-hash", event.OrderHash),
					zap.String("maker", event.Order.Maker),
					zap.String("type", event.Order.Type))
			}
		}
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
