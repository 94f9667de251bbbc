// Package fulfill turns signed exchange orders plus a desired fill amount
// into fully-encoded on-chain calls. One handler per supported protocol;
// the dispatcher validates fill constraints and routes by protocol tag.
package fulfill

import (
	"context"
	"math/big"

	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

// Request is the ephemeral value object for one fulfillment. Constructed
// per call, never persisted.
type Request struct {
	Order  *types.Order
	Amount *big.Int

	// OriginFees are additional (recipient, bps) fees requested by the
	// fulfilling caller, funded from the buyer's side.
	OriginFees []types.Part

	// Payouts optionally split the buyer's received assets. Empty means
	// everything goes to the fulfilling wallet.
	Payouts []types.Part
}

// Handler is the common fulfillment interface implemented once per
// protocol.
type Handler interface {
	// BaseFee returns the protocol fee in basis points for the order.
	BaseFee(ctx context.Context, order *types.Order) (int64, error)

	// Encode computes scaled amounts, fees and recipients, and encodes
	// the protocol's native call. It performs reads (fee schedule,
	// royalties, nonces) but never submits anything.
	Encode(ctx context.Context, req *Request) (*wallet.Call, error)
}
