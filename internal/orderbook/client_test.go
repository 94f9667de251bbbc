package orderbook

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

const orderJSON = `{
	"maker": "0x1111111111111111111111111111111111111111",
	"make": {
		"assetType": {"assetClass": "ERC1155", "contract": "0x2222222222222222222222222222222222222222", "tokenId": "7"},
		"value": "100"
	},
	"take": {
		"assetType": {"assetClass": "ETH"},
		"value": "1000000"
	},
	"salt": "42",
	"fill": "10",
	"allowPartialFill": true,
	"isMakeFill": true,
	"network": "mainnet",
	"type": "RARIBLE_V2",
	"signature": "0x01"
}`

func TestGetOrderByHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0.1/orders/0xdeadbeef", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(orderJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	order, err := client.GetOrderByHash(context.Background(), "0xdeadbeef")
	require.NoError(t, err)

	assert.Equal(t, types.ProtocolRaribleV2, order.Protocol)
	assert.Equal(t, types.ClassERC1155, order.Make.Type.Class)
	assert.Equal(t, big.NewInt(100), order.Make.Value)
	assert.Equal(t, big.NewInt(7), order.Make.Type.TokenID)
	assert.Equal(t, big.NewInt(10), order.Fill)
	assert.Equal(t, big.NewInt(90), order.Remaining())
	assert.True(t, order.AllowPartialFill)
	assert.Equal(t, []byte{0x01}, order.Signature)
}

func TestGetOrderByHash_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	_, err := client.GetOrderByHash(context.Background(), "0xmissing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetOrderByHash_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	_, err := client.GetOrderByHash(context.Background(), "0xdeadbeef")
	require.ErrorIs(t, err, types.ErrNetworkError)
}

func TestGetSellOrdersByItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0.1/orders/sell/byItem", r.URL.Path)
		assert.Equal(t, "0x2222222222222222222222222222222222222222", r.URL.Query().Get("contract"))
		assert.Equal(t, "7", r.URL.Query().Get("tokenId"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders": [` + orderJSON + `], "continuation": "next-page"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	orders, continuation, err := client.GetSellOrdersByItem(context.Background(),
		"0x2222222222222222222222222222222222222222", "7", "")
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, "next-page", continuation)
}

func TestGetSellOrdersByItem_SkipsUnconvertible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders": [
			{"maker": "0x01", "make": {"assetType": {"assetClass": "AMM_POOL"}, "value": "1"}, "take": {"assetType": {"assetClass": "ETH"}, "value": "1"}, "salt": "1"},
			` + orderJSON + `
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	orders, _, err := client.GetSellOrdersByItem(context.Background(), "0x22", "7", "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestOrderDTO_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *OrderDTO)
	}{
		{
			name:   "bad-make-value",
			mutate: func(d *OrderDTO) { d.Make.Value = "not-a-number" },
		},
		{
			name:   "bad-salt",
			mutate: func(d *OrderDTO) { d.Salt = "0xff" },
		},
		{
			name:   "bad-token-id",
			mutate: func(d *OrderDTO) { d.Make.AssetType.TokenID = "seven" },
		},
		{
			name:   "bad-signature",
			mutate: func(d *OrderDTO) { d.Signature = "zz" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := OrderDTO{
				Maker: "0x1111111111111111111111111111111111111111",
				Make: AssetDTO{
					AssetType: AssetTypeDTO{AssetClass: "ERC721", Contract: "0x22", TokenID: "7"},
					Value:     "1",
				},
				Take: AssetDTO{
					AssetType: AssetTypeDTO{AssetClass: "ETH"},
					Value:     "1000",
				},
				Salt: "42",
			}
			tt.mutate(&dto)

			_, err := dto.ToOrder()
			require.Error(t, err)
		})
	}
}
