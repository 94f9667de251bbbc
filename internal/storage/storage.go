// Package storage persists a history of submitted fills. The engine itself
// stays stateless; recording is best-effort and never blocks a fulfillment.
package storage

import (
	"context"
	"time"
)

// FillRecord describes one submitted fulfillment transaction.
type FillRecord struct {
	ID          string // request id assigned by the dispatcher
	OrderMaker  string
	Protocol    string
	Network     string
	Amount      string // base units, decimal string
	PriceTotal  string // buyer-paid total including fees, base units
	ProtocolFee string
	TxHash      string
	SubmittedAt time.Time
}

// Storage is the interface for recording submitted fills.
type Storage interface {
	// RecordFill stores one fill record.
	RecordFill(ctx context.Context, record *FillRecord) error

	// Close closes the storage connection.
	Close() error
}
