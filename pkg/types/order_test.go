package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sellOrder(makeValue, takeValue, fill int64) *Order {
	return &Order{
		Maker: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Make: Asset{
			Type: AssetType{
				Class:    ClassERC1155,
				Contract: common.HexToAddress("0x2222222222222222222222222222222222222222"),
				TokenID:  big.NewInt(7),
			},
			Value: big.NewInt(makeValue),
		},
		Take: Asset{
			Type:  AssetType{Class: ClassETH},
			Value: big.NewInt(takeValue),
		},
		Fill:       big.NewInt(fill),
		IsMakeFill: true,
	}
}

func TestOrder_FillBase(t *testing.T) {
	order := sellOrder(100, 1000000, 0)
	assert.Equal(t, big.NewInt(100), order.FillBase())

	order.IsMakeFill = false
	assert.Equal(t, big.NewInt(1000000), order.FillBase())
}

func TestOrder_Remaining(t *testing.T) {
	tests := []struct {
		name string
		fill int64
		want int64
	}{
		{name: "untouched", fill: 0, want: 100},
		{name: "partially-filled", fill: 30, want: 70},
		{name: "exhausted", fill: 100, want: 0},
		{name: "overfilled-clamps-to-zero", fill: 120, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sellOrder(100, 1000000, tt.fill)
			assert.Equal(t, big.NewInt(tt.want), order.Remaining())
			assert.Equal(t, tt.want == 0, order.Terminal())
		})
	}
}

func TestOrder_RemainingNilFill(t *testing.T) {
	order := sellOrder(100, 1000000, 0)
	order.Fill = nil

	assert.Equal(t, big.NewInt(100), order.Remaining())
}

func TestOrder_ActiveAt(t *testing.T) {
	tests := []struct {
		name  string
		start uint64
		end   uint64
		now   uint64
		want  bool
	}{
		{name: "unbounded", start: 0, end: 0, now: 1700000000, want: true},
		{name: "inside-window", start: 1000, end: 2000, now: 1500, want: true},
		{name: "at-start", start: 1000, end: 2000, now: 1000, want: true},
		{name: "before-start", start: 1000, end: 2000, now: 999, want: false},
		{name: "at-end-exclusive", start: 1000, end: 2000, now: 2000, want: false},
		{name: "after-end", start: 1000, end: 2000, now: 2001, want: false},
		{name: "open-ended", start: 1000, end: 0, now: 9999999, want: true},
		{name: "no-start", start: 0, end: 2000, now: 1999, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sellOrder(1, 1, 0)
			order.Start = tt.start
			order.End = tt.end

			assert.Equal(t, tt.want, order.ActiveAt(tt.now))
		})
	}
}

func TestAssetClass_Selector(t *testing.T) {
	// The exchange contract's well-known bytes4(keccak256(class)) ids.
	assert.Equal(t, [4]byte{0xaa, 0xae, 0xbe, 0xba}, ClassETH.Selector())
	assert.Equal(t, [4]byte{0x73, 0xad, 0x21, 0x46}, ClassERC721.Selector())
	assert.Equal(t, [4]byte{0x97, 0x3b, 0xb6, 0x40}, ClassERC1155.Selector())
	assert.Equal(t, [4]byte{0x8a, 0xe8, 0x5d, 0x84}, ClassERC20.Selector())
}

func TestAssetClass_ValidAndFungible(t *testing.T) {
	for _, class := range []AssetClass{ClassETH, ClassERC20, ClassERC721, ClassERC1155, ClassCollection} {
		assert.True(t, class.Valid(), string(class))
	}

	assert.False(t, AssetClass("CRYPTOPUNKS").Valid())
	assert.False(t, AssetClass("").Valid())

	assert.True(t, ClassETH.Fungible())
	assert.True(t, ClassERC20.Fungible())
	assert.False(t, ClassERC721.Fungible())
	assert.False(t, ClassERC1155.Fungible())
	assert.False(t, ClassCollection.Fungible())
}

func TestAssetType_Equal(t *testing.T) {
	base := AssetType{
		Class:    ClassERC721,
		Contract: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		TokenID:  big.NewInt(7),
	}

	same := AssetType{
		Class:    ClassERC721,
		Contract: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		TokenID:  big.NewInt(7),
	}
	require.True(t, base.Equal(same))

	otherToken := same
	otherToken.TokenID = big.NewInt(8)
	assert.False(t, base.Equal(otherToken))

	noToken := same
	noToken.TokenID = nil
	assert.False(t, base.Equal(noToken))

	otherClass := same
	otherClass.Class = ClassERC1155
	assert.False(t, base.Equal(otherClass))
}

func TestChainID(t *testing.T) {
	id, ok := ChainID("mainnet")
	require.True(t, ok)
	assert.Equal(t, big.NewInt(1), id)

	id, ok = ChainID("polygon")
	require.True(t, ok)
	assert.Equal(t, big.NewInt(137), id)

	_, ok = ChainID("unobtainium")
	assert.False(t, ok)
}
