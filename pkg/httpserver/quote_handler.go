package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fulfill"
	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

// OrderReader looks orders up by hash.
type OrderReader interface {
	GetOrderByHash(ctx context.Context, hash string) (*types.Order, error)
}

// Quoter prices fulfillments without submitting them.
type Quoter interface {
	Quote(ctx context.Context, req *fulfill.Request) (*wallet.PendingTx, error)
	GetOrderFee(ctx context.Context, order *types.Order) (int64, error)
}

// QuoteHandler serves the read-only quote API.
type QuoteHandler struct {
	orders OrderReader
	quoter Quoter
	logger *zap.Logger
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(orders OrderReader, quoter Quoter, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		orders: orders,
		quoter: quoter,
		logger: logger,
	}
}

// QuoteResponse is the JSON shape of a priced fulfillment.
type QuoteResponse struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Protocol string `json:"protocol"`
	Method   string `json:"method"`
}

// FeeResponse is the JSON shape of a base fee lookup.
type FeeResponse struct {
	Protocol string `json:"protocol"`
	Network  string `json:"network"`
	FeeBps   int64  `json:"fee_bps"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleQuote handles GET /api/quote?hash=<order-hash>&amount=<fill-amount>.
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash == "" {
		h.writeError(w, "missing required query parameter: hash", http.StatusBadRequest)
		return
	}

	amountStr := r.URL.Query().Get("amount")
	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok || amount.Sign() <= 0 {
		h.writeError(w, "invalid amount", http.StatusBadRequest)
		return
	}

	h.logger.Debug("quote-request-received",
		zap.String("hash", hash),
		zap.String("amount", amount.String()))

	order, err := h.orders.GetOrderByHash(r.Context(), hash)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	tx, err := h.quoter.Quote(r.Context(), &fulfill.Request{Order: order, Amount: amount})
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	response := QuoteResponse{
		To:       tx.To.Hex(),
		Data:     hexutil.Encode(tx.Data),
		Protocol: string(tx.Protocol),
		Method:   tx.Method,
	}
	if tx.Value != nil {
		response.Value = tx.Value.String()
	} else {
		response.Value = "0"
	}

	h.writeJSON(w, response)
}

// HandleFee handles GET /api/fee?hash=<order-hash>.
func (h *QuoteHandler) HandleFee(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash == "" {
		h.writeError(w, "missing required query parameter: hash", http.StatusBadRequest)
		return
	}

	order, err := h.orders.GetOrderByHash(r.Context(), hash)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	fee, err := h.quoter.GetOrderFee(r.Context(), order)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, FeeResponse{
		Protocol: string(order.Protocol),
		Network:  order.Network,
		FeeBps:   fee,
	})
}

// statusForError maps engine errors onto HTTP status codes. Validation
// failures are client errors; upstream failures are gateway errors.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrInsufficientFillAmount),
		errors.Is(err, types.ErrPartialFillNotSupported),
		errors.Is(err, types.ErrChainMismatch),
		errors.Is(err, types.ErrUnsupportedProtocol),
		errors.Is(err, types.ErrUnsupportedAssetType):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrOrderExpired):
		return http.StatusGone
	case errors.Is(err, types.ErrFeeNotFound),
		errors.Is(err, types.ErrUnsupportedFeeType),
		errors.Is(err, types.ErrFeeConfigMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrNetworkError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *QuoteHandler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *QuoteHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
