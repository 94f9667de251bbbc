package fulfill

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/storage"
	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

// Fulfiller validates fill constraints, routes orders to protocol handlers
// and submits the resulting calls. It holds no mutable order state; the
// chain serializes concurrent fills of the same order.
type Fulfiller struct {
	provider wallet.Provider
	handlers map[types.Protocol]Handler
	store    storage.Storage // optional
	logger   *zap.Logger
	now      func() time.Time
}

// Config holds fulfiller configuration.
type Config struct {
	Provider wallet.Provider
	Handlers map[types.Protocol]Handler
	Storage  storage.Storage // optional fill history sink
	Logger   *zap.Logger
}

// New creates a fulfiller with the given handler registry.
func New(cfg *Config) *Fulfiller {
	return &Fulfiller{
		provider: cfg.Provider,
		handlers: cfg.Handlers,
		store:    cfg.Storage,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Fulfill builds and submits the on-chain call executing the requested
// fill. The returned handle is owned by the caller.
func (f *Fulfiller) Fulfill(ctx context.Context, req *Request) (*wallet.PendingTx, error) {
	requestID := uuid.NewString()

	call, err := f.encode(ctx, requestID, req)
	if err != nil {
		FulfillmentErrorsTotal.WithLabelValues(string(req.Order.Protocol)).Inc()
		return nil, err
	}

	tx, err := f.provider.SendTransaction(ctx, call)
	if err != nil {
		FulfillmentErrorsTotal.WithLabelValues(string(req.Order.Protocol)).Inc()
		return nil, fmt.Errorf("submit fulfillment: %w", err)
	}

	FulfillmentsTotal.WithLabelValues(string(req.Order.Protocol)).Inc()

	f.logger.Info("fulfillment-submitted",
		zap.String("request-id", requestID),
		zap.String("protocol", string(req.Order.Protocol)),
		zap.String("tx-hash", tx.Hash.Hex()),
		zap.String("amount", req.Amount.String()))

	f.recordFill(ctx, requestID, req, call, tx)

	return tx, nil
}

// Quote builds the call without submitting it. Wait on the result fails
// with wallet.ErrNotSubmitted.
func (f *Fulfiller) Quote(ctx context.Context, req *Request) (*wallet.PendingTx, error) {
	requestID := uuid.NewString()

	call, err := f.encode(ctx, requestID, req)
	if err != nil {
		return nil, err
	}

	return wallet.NewQuote(f.provider.From(), call), nil
}

// GetOrderFee returns the protocol base fee in basis points for the order.
func (f *Fulfiller) GetOrderFee(ctx context.Context, order *types.Order) (int64, error) {
	handler, ok := f.handlers[order.Protocol]
	if !ok {
		return 0, fmt.Errorf("%w: %q", types.ErrUnsupportedProtocol, order.Protocol)
	}

	return handler.BaseFee(ctx, order)
}

// encode runs local validation and delegates to the protocol handler.
// Every validation failure surfaces here, before any network call.
func (f *Fulfiller) encode(ctx context.Context, requestID string, req *Request) (*wallet.Call, error) {
	order := req.Order

	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", types.ErrInsufficientFillAmount)
	}

	remaining := order.Remaining()
	if req.Amount.Cmp(remaining) > 0 {
		return nil, fmt.Errorf("%w: requested %s, remaining %s",
			types.ErrInsufficientFillAmount, req.Amount, remaining)
	}

	if !order.AllowPartialFill && req.Amount.Cmp(remaining) < 0 {
		return nil, fmt.Errorf("%w: requested %s of %s",
			types.ErrPartialFillNotSupported, req.Amount, remaining)
	}

	if !order.ActiveAt(uint64(f.now().Unix())) {
		return nil, fmt.Errorf("%w: valid [%d, %d)", types.ErrOrderExpired, order.Start, order.End)
	}

	handler, ok := f.handlers[order.Protocol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedProtocol, order.Protocol)
	}

	orderChain, ok := types.ChainID(order.Network)
	if !ok {
		return nil, fmt.Errorf("%w: unknown network %q", types.ErrChainMismatch, order.Network)
	}

	walletChain, err := f.provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get wallet chain id: %w", err)
	}

	if orderChain.Cmp(walletChain) != 0 {
		return nil, fmt.Errorf("%w: order on chain %s, wallet on chain %s",
			types.ErrChainMismatch, orderChain, walletChain)
	}

	f.logger.Debug("fulfillment-validated",
		zap.String("request-id", requestID),
		zap.String("protocol", string(order.Protocol)),
		zap.String("maker", order.Maker.Hex()))

	start := f.now()
	call, err := handler.Encode(ctx, req)
	EncodeDurationSeconds.WithLabelValues(string(order.Protocol)).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}

	return call, nil
}

// recordFill writes the fill to the history sink. Best-effort: a storage
// failure is logged and never fails the fulfillment.
func (f *Fulfiller) recordFill(ctx context.Context, requestID string, req *Request, call *wallet.Call, tx *wallet.PendingTx) {
	if f.store == nil {
		return
	}

	record := &storage.FillRecord{
		ID:          requestID,
		OrderMaker:  req.Order.Maker.Hex(),
		Protocol:    string(req.Order.Protocol),
		Network:     req.Order.Network,
		Amount:      req.Amount.String(),
		TxHash:      tx.Hash.Hex(),
		SubmittedAt: f.now(),
	}

	if call.Value != nil {
		record.PriceTotal = call.Value.String()
	}

	err := f.store.RecordFill(ctx, record)
	if err != nil {
		f.logger.Warn("fill-record-failed",
			zap.String("request-id", requestID),
			zap.Error(err))
	}
}
