package httpserver

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fulfill"
	"github.com/yiinote/ethereum-sdk/pkg/healthprobe"
	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

type fakeOrderReader struct {
	order *types.Order
	err   error
}

func (r *fakeOrderReader) GetOrderByHash(_ context.Context, _ string) (*types.Order, error) {
	return r.order, r.err
}

type fakeQuoter struct {
	tx       *wallet.PendingTx
	quoteErr error
	fee      int64
	feeErr   error
}

func (q *fakeQuoter) Quote(_ context.Context, _ *fulfill.Request) (*wallet.PendingTx, error) {
	return q.tx, q.quoteErr
}

func (q *fakeQuoter) GetOrderFee(_ context.Context, _ *types.Order) (int64, error) {
	return q.fee, q.feeErr
}

func sampleOrder() *types.Order {
	return &types.Order{
		Maker:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Network:  "mainnet",
		Protocol: types.ProtocolRaribleV2,
	}
}

func newHandler(orders OrderReader, quoter Quoter) *QuoteHandler {
	return NewQuoteHandler(orders, quoter, zap.NewNop())
}

func TestHandleQuote(t *testing.T) {
	quoter := &fakeQuoter{tx: &wallet.PendingTx{
		To:       common.HexToAddress("0x9757F2d2b135150BBeb65308D4a91804107cd8D6"),
		Data:     []byte{0xde, 0xad},
		Value:    big.NewInt(102500),
		Protocol: types.ProtocolRaribleV2,
		Method:   "matchOrders",
	}}
	handler := newHandler(&fakeOrderReader{order: sampleOrder()}, quoter)

	req := httptest.NewRequest(http.MethodGet, "/api/quote?hash=0xabc&amount=10", nil)
	rec := httptest.NewRecorder()

	handler.HandleQuote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp QuoteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "0xdead", resp.Data)
	assert.Equal(t, "102500", resp.Value)
	assert.Equal(t, "matchOrders", resp.Method)
}

func TestHandleQuote_BadRequests(t *testing.T) {
	handler := newHandler(&fakeOrderReader{order: sampleOrder()}, &fakeQuoter{})

	tests := []struct {
		name string
		url  string
	}{
		{name: "missing-hash", url: "/api/quote?amount=10"},
		{name: "missing-amount", url: "/api/quote?hash=0xabc"},
		{name: "negative-amount", url: "/api/quote?hash=0xabc&amount=-5"},
		{name: "non-numeric-amount", url: "/api/quote?hash=0xabc&amount=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()

			handler.HandleQuote(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleQuote_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "partial-not-supported", err: types.ErrPartialFillNotSupported, wantStatus: http.StatusBadRequest},
		{name: "chain-mismatch", err: types.ErrChainMismatch, wantStatus: http.StatusBadRequest},
		{name: "expired", err: types.ErrOrderExpired, wantStatus: http.StatusGone},
		{name: "fee-missing", err: types.ErrFeeNotFound, wantStatus: http.StatusUnprocessableEntity},
		{name: "network", err: types.ErrNetworkError, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newHandler(&fakeOrderReader{order: sampleOrder()}, &fakeQuoter{quoteErr: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/quote?hash=0xabc&amount=10", nil)
			rec := httptest.NewRecorder()

			handler.HandleQuote(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleFee(t *testing.T) {
	handler := newHandler(&fakeOrderReader{order: sampleOrder()}, &fakeQuoter{fee: 250})

	req := httptest.NewRequest(http.MethodGet, "/api/fee?hash=0xabc", nil)
	rec := httptest.NewRecorder()

	handler.HandleFee(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp FeeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(250), resp.FeeBps)
	assert.Equal(t, "mainnet", resp.Network)
}

func TestServerRoutes(t *testing.T) {
	checker := healthprobe.New()
	checker.SetReady(true)

	srv := New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: checker,
		Orders:        &fakeOrderReader{order: sampleOrder()},
		Quoter:        &fakeQuoter{fee: 250},
	})

	ts := httptest.NewServer(srv.server.Handler)
	defer ts.Close()

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(ts.URL + "/api/fee?hash=0xabc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
