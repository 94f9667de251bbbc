package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

const receiptPollInterval = 2 * time.Second

// EthProvider implements Provider over a JSON-RPC endpoint with a local
// ECDSA key. Key custody policy beyond holding the key in memory is the
// caller's concern.
type EthProvider struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	logger  *zap.Logger
}

// Config holds provider configuration.
type Config struct {
	RPCURL        string
	PrivateKeyHex string
	Logger        *zap.Logger
}

// NewEthProvider dials the RPC endpoint and derives the wallet address.
func NewEthProvider(ctx context.Context, cfg *Config) (*EthProvider, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpcURL cannot be empty")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	key, err := crypto.HexToECDSA(cfg.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	return &EthProvider{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		logger:  cfg.Logger,
	}, nil
}

// From returns the wallet address.
func (p *EthProvider) From() common.Address {
	return p.from
}

// ChainID returns the connected chain id.
func (p *EthProvider) ChainID(_ context.Context) (*big.Int, error) {
	return p.chainID, nil
}

// Client exposes the underlying RPC client for read-only collaborators
// (royalty registry, nonce reads).
func (p *EthProvider) Client() *ethclient.Client {
	return p.client
}

// SendTransaction signs and submits the call, returning a pending handle.
func (p *EthProvider) SendTransaction(ctx context.Context, call *Call) (*PendingTx, error) {
	nonce, err := p.client.PendingNonceAt(ctx, p.from)
	if err != nil {
		return nil, fmt.Errorf("get pending nonce: %w", err)
	}

	gasPrice, err := p.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}

	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit, err := p.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  p.from,
		To:    &call.To,
		Value: value,
		Data:  call.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	tx, err := ethtypes.SignNewTx(p.key, ethtypes.LatestSignerForChainID(p.chainID), &ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &call.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     call.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	err = p.client.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	p.logger.Info("transaction-submitted",
		zap.String("hash", tx.Hash().Hex()),
		zap.String("to", call.To.Hex()),
		zap.String("protocol", string(call.Protocol)),
		zap.String("method", call.Method))

	return &PendingTx{
		Hash:     tx.Hash(),
		From:     p.from,
		To:       call.To,
		Data:     call.Data,
		Value:    value,
		Protocol: call.Protocol,
		Method:   call.Method,
		wait:     p.waitFunc(tx.Hash()),
	}, nil
}

// waitFunc polls for the receipt. No timeout is imposed here; the caller
// bounds the wait through ctx.
func (p *EthProvider) waitFunc(hash common.Hash) func(ctx context.Context) (*ethtypes.Receipt, error) {
	return func(ctx context.Context) (*ethtypes.Receipt, error) {
		ticker := time.NewTicker(receiptPollInterval)
		defer ticker.Stop()

		for {
			receipt, err := p.client.TransactionReceipt(ctx, hash)
			if err == nil {
				if receipt.Status == ethtypes.ReceiptStatusFailed {
					return receipt, fmt.Errorf("%w: tx %s", types.ErrFulfillmentReverted, hash.Hex())
				}

				return receipt, nil
			}

			if !errors.Is(err, ethereum.NotFound) {
				return nil, fmt.Errorf("get receipt: %w", err)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

// SignTypedData hashes the EIP-712 payload and signs it with the wallet key.
func (p *EthProvider) SignTypedData(_ context.Context, data apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, fmt.Errorf("hash typed data: %w", err)
	}

	sig, err := crypto.Sign(hash, p.key)
	if err != nil {
		return nil, fmt.Errorf("sign typed data: %w", err)
	}

	// Shift recovery id to the Ethereum convention.
	sig[64] += 27

	return sig, nil
}

// Close releases the RPC connection.
func (p *EthProvider) Close() {
	p.client.Close()
}
