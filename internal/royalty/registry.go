// Package royalty reads creator royalty schedules from the on-chain
// royalties registry used by the native exchange.
package royalty

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

const registryABIJSON = `[{
	"name": "getRoyalties",
	"type": "function",
	"stateMutability": "view",
	"inputs": [
		{"name": "token", "type": "address"},
		{"name": "tokenId", "type": "uint256"}
	],
	"outputs": [{
		"name": "royalties",
		"type": "tuple[]",
		"components": [
			{"name": "account", "type": "address"},
			{"name": "value", "type": "uint96"}
		]
	}]
}]`

// Registry resolves royalty schedules for an asset.
type Registry interface {
	GetRoyalties(ctx context.Context, assetType types.AssetType) ([]types.Part, error)
}

// EthRegistry reads the royalties registry contract through eth_call.
// Results are never cached; royalty schedules can change between calls.
type EthRegistry struct {
	caller   ethereum.ContractCaller
	contract common.Address
	abi      abi.ABI
	logger   *zap.Logger
}

// NewEthRegistry builds a registry reader bound to the given contract.
func NewEthRegistry(caller ethereum.ContractCaller, contract common.Address, logger *zap.Logger) (*EthRegistry, error) {
	parsed, err := abi.JSON(strings.NewReader(registryABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse registry ABI: %w", err)
	}

	return &EthRegistry{
		caller:   caller,
		contract: contract,
		abi:      parsed,
		logger:   logger,
	}, nil
}

// GetRoyalties returns the (recipient, bps) royalty parts for the asset.
// Assets without token-bound royalties return an empty slice.
func (r *EthRegistry) GetRoyalties(ctx context.Context, assetType types.AssetType) ([]types.Part, error) {
	if assetType.Class == types.ClassETH || assetType.Class == types.ClassERC20 {
		return nil, nil
	}

	tokenID := assetType.TokenID
	if tokenID == nil {
		tokenID = big.NewInt(0)
	}

	data, err := r.abi.Pack("getRoyalties", assetType.Contract, tokenID)
	if err != nil {
		return nil, fmt.Errorf("pack getRoyalties: %w", err)
	}

	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &r.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: call royalties registry: %v", types.ErrNetworkError, err)
	}

	var decoded []struct {
		Account common.Address
		Value   *big.Int
	}

	err = r.abi.UnpackIntoInterface(&decoded, "getRoyalties", out)
	if err != nil {
		return nil, fmt.Errorf("unpack getRoyalties: %w", err)
	}

	parts := make([]types.Part, 0, len(decoded))
	for _, entry := range decoded {
		parts = append(parts, types.Part{
			Account: entry.Account,
			Value:   entry.Value.Int64(),
		})
	}

	r.logger.Debug("royalties-resolved",
		zap.String("contract", assetType.Contract.Hex()),
		zap.Int("parts", len(parts)))

	return parts, nil
}
