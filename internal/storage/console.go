package storage

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by logging fills. The default sink when
// no database is configured.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	return &ConsoleStorage{logger: logger}
}

// RecordFill logs the fill record.
func (c *ConsoleStorage) RecordFill(_ context.Context, record *FillRecord) error {
	c.logger.Info("fill-submitted",
		zap.String("id", record.ID),
		zap.String("protocol", record.Protocol),
		zap.String("network", record.Network),
		zap.String("order-maker", record.OrderMaker),
		zap.String("amount", record.Amount),
		zap.String("price-total", record.PriceTotal),
		zap.String("protocol-fee", record.ProtocolFee),
		zap.String("tx-hash", record.TxHash))

	return nil
}

// Close is a no-op.
func (c *ConsoleStorage) Close() error {
	return nil
}
