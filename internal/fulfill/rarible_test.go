package fulfill

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

type staticResolver struct {
	fee int64
	err error
}

func (r *staticResolver) BaseFee(_ context.Context, _ string, _ types.Protocol) (int64, error) {
	return r.fee, r.err
}

type staticRegistry struct {
	parts []types.Part
	err   error
}

func (r *staticRegistry) GetRoyalties(_ context.Context, _ types.AssetType) ([]types.Part, error) {
	return r.parts, r.err
}

func newRaribleHandler(t *testing.T, resolver *staticResolver, registry *staticRegistry, provider *fakeProvider) *RaribleHandler {
	t.Helper()

	h, err := NewRaribleHandler(&RaribleConfig{
		Resolver:  resolver,
		Royalties: registry,
		Provider:  provider,
		Exchange:  common.HexToAddress("0x9757F2d2b135150BBeb65308D4a91804107cd8D6"),
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	return h
}

func TestRaribleEncode_FullFillValueIncludesProtocolFee(t *testing.T) {
	// 250 bps on a 10_000_000_000 price adds 250_000_000 on top.
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{fee: 250}, &staticRegistry{}, provider)

	order := testOrder()
	order.Make.Value = big.NewInt(1)
	order.Take.Value = big.NewInt(10000000000)

	call, err := h.Encode(context.Background(), &Request{Order: order, Amount: big.NewInt(1)})
	require.NoError(t, err)

	assert.Equal(t, h.exchange, call.To)
	assert.Equal(t, "matchOrders", call.Method)
	assert.Equal(t, big.NewInt(10250000000), call.Value)
	assert.NotEmpty(t, call.Data)
}

func TestRaribleEncode_PartialFillScalesPrice(t *testing.T) {
	// 10 of 100 editions at a total price of 1_000_000 costs 100_000
	// plus the proportional fee.
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{fee: 250}, &staticRegistry{}, provider)

	order := testOrder()

	call, err := h.Encode(context.Background(), &Request{Order: order, Amount: big.NewInt(10)})
	require.NoError(t, err)

	// scaled take 100_000, fee 2_500
	assert.Equal(t, big.NewInt(102500), call.Value)
}

func TestRaribleEncode_PaymentRoundsUpOnRemainder(t *testing.T) {
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{fee: 0}, &staticRegistry{}, provider)

	order := testOrder()
	order.Make.Value = big.NewInt(3)
	order.Take.Value = big.NewInt(100)
	order.Fill = big.NewInt(0)

	call, err := h.Encode(context.Background(), &Request{Order: order, Amount: big.NewInt(1)})
	require.NoError(t, err)

	// 100 * 1 / 3 rounds up to 34.
	assert.Equal(t, big.NewInt(34), call.Value)
}

func TestRaribleEncode_OriginFeesAddToValue(t *testing.T) {
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{fee: 250}, &staticRegistry{}, provider)

	order := testOrder()
	order.Make.Value = big.NewInt(1)
	order.Take.Value = big.NewInt(1000000)

	call, err := h.Encode(context.Background(), &Request{
		Order:  order,
		Amount: big.NewInt(1),
		OriginFees: []types.Part{
			{Account: common.HexToAddress("0x4444444444444444444444444444444444444444"), Value: 100},
			{Account: common.HexToAddress("0x5555555555555555555555555555555555555555"), Value: 50},
		},
	})
	require.NoError(t, err)

	// 1_000_000 + 25_000 protocol + 10_000 + 5_000 origin.
	assert.Equal(t, big.NewInt(1040000), call.Value)
}

func TestRaribleEncode_ERC20TakeHasNoValue(t *testing.T) {
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{fee: 250}, &staticRegistry{}, provider)

	order := testOrder()
	order.Take.Type = types.AssetType{
		Class:    types.ClassERC20,
		Contract: common.HexToAddress("0x6666666666666666666666666666666666666666"),
	}

	call, err := h.Encode(context.Background(), &Request{Order: order, Amount: big.NewInt(100)})
	require.NoError(t, err)
	assert.Nil(t, call.Value)
}

func TestRaribleEncode_RejectsBadAssetClasses(t *testing.T) {
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{fee: 250}, &staticRegistry{}, provider)

	tests := []struct {
		name   string
		mutate func(o *types.Order)
	}{
		{
			name:   "fungible-make-side",
			mutate: func(o *types.Order) { o.Make.Type.Class = types.ClassERC20 },
		},
		{
			name:   "nft-take-side",
			mutate: func(o *types.Order) { o.Take.Type.Class = types.ClassERC721 },
		},
		{
			name:   "unknown-class",
			mutate: func(o *types.Order) { o.Make.Type.Class = "CRYPTOPUNKS" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder()
			tt.mutate(order)

			_, err := h.Encode(context.Background(), &Request{Order: order, Amount: big.NewInt(100)})
			require.ErrorIs(t, err, types.ErrUnsupportedAssetType)
		})
	}
}

func TestRaribleEncode_FeeResolverErrorPropagates(t *testing.T) {
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{err: types.ErrFeeNotFound}, &staticRegistry{}, provider)

	_, err := h.Encode(context.Background(), &Request{Order: testOrder(), Amount: big.NewInt(100)})
	require.ErrorIs(t, err, types.ErrFeeNotFound)
}

func TestRaribleEncode_ExcessiveRoyaltiesRejected(t *testing.T) {
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	registry := &staticRegistry{parts: []types.Part{
		{Account: common.HexToAddress("0x7777777777777777777777777777777777777777"), Value: 3000},
		{Account: common.HexToAddress("0x8888888888888888888888888888888888888888"), Value: 2500},
	}}
	h := newRaribleHandler(t, &staticResolver{fee: 250}, registry, provider)

	_, err := h.Encode(context.Background(), &Request{Order: testOrder(), Amount: big.NewInt(100)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "royalties exceed 50%")
}

func TestRaribleEncode_MissingTokenIDRejected(t *testing.T) {
	provider := &fakeProvider{from: common.HexToAddress("0x9999999999999999999999999999999999999999")}
	h := newRaribleHandler(t, &staticResolver{fee: 250}, &staticRegistry{}, provider)

	order := testOrder()
	order.Make.Type.TokenID = nil

	_, err := h.Encode(context.Background(), &Request{Order: order, Amount: big.NewInt(100)})
	require.ErrorIs(t, err, types.ErrUnsupportedAssetType)
}
