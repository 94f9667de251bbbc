// Package wallet defines the narrow wallet/provider capability set the
// fulfillment engine depends on, plus a go-ethereum backed implementation.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

// Call is a fully-encoded contract call ready for submission. Handlers
// produce Calls; the provider turns them into pending transactions.
type Call struct {
	To    common.Address
	Data  []byte
	Value *big.Int // native coin to attach, nil means zero

	// Metadata for callers and structured logs, never consulted on-chain.
	Protocol types.Protocol
	Method   string
}

// Provider is the wallet capability set consumed by the engine. The engine
// depends only on this interface, never on a concrete client.
type Provider interface {
	// From returns the fulfilling wallet address.
	From() common.Address

	// ChainID returns the chain the wallet is connected to.
	ChainID(ctx context.Context) (*big.Int, error)

	// SendTransaction signs and submits a call, returning a handle the
	// caller owns. The engine holds no reference after return.
	SendTransaction(ctx context.Context, call *Call) (*PendingTx, error)

	// SignTypedData signs an EIP-712 payload with the wallet key.
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// PendingTx is the uniform output handle for a submitted (or quoted)
// fulfillment, identical across protocols so callers never branch on
// protocol after the fact.
type PendingTx struct {
	Hash  common.Hash
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int

	Protocol types.Protocol
	Method   string

	wait func(ctx context.Context) (*ethtypes.Receipt, error)
}

// ErrNotSubmitted is returned by Wait on a quote-only pending transaction.
var ErrNotSubmitted = errors.New("transaction was not submitted")

// Wait blocks until the transaction is mined and returns its receipt.
// A reverted execution surfaces as types.ErrFulfillmentReverted.
func (p *PendingTx) Wait(ctx context.Context) (*ethtypes.Receipt, error) {
	if p.wait == nil {
		return nil, ErrNotSubmitted
	}

	return p.wait(ctx)
}

// NewQuote builds an unsubmitted pending transaction from a call. Wait on
// the result fails with ErrNotSubmitted.
func NewQuote(from common.Address, call *Call) *PendingTx {
	return &PendingTx{
		From:     from,
		To:       call.To,
		Data:     call.Data,
		Value:    call.Value,
		Protocol: call.Protocol,
		Method:   call.Method,
	}
}
