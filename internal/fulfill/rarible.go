package fulfill

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fees"
	"github.com/yiinote/ethereum-sdk/internal/royalty"
	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/units"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

// matchOrdersABIJSON is the native exchange entrypoint. Orders are the
// LibOrder tuple; asset types nest a 4-byte class selector plus ABI-encoded
// payload.
const matchOrdersABIJSON = `[{
	"name": "matchOrders",
	"type": "function",
	"stateMutability": "payable",
	"inputs": [
		{"name": "orderLeft", "type": "tuple", "components": [
			{"name": "maker", "type": "address"},
			{"name": "makeAsset", "type": "tuple", "components": [
				{"name": "assetType", "type": "tuple", "components": [
					{"name": "assetClass", "type": "bytes4"},
					{"name": "data", "type": "bytes"}
				]},
				{"name": "value", "type": "uint256"}
			]},
			{"name": "taker", "type": "address"},
			{"name": "takeAsset", "type": "tuple", "components": [
				{"name": "assetType", "type": "tuple", "components": [
					{"name": "assetClass", "type": "bytes4"},
					{"name": "data", "type": "bytes"}
				]},
				{"name": "value", "type": "uint256"}
			]},
			{"name": "salt", "type": "uint256"},
			{"name": "start", "type": "uint256"},
			{"name": "end", "type": "uint256"},
			{"name": "dataType", "type": "bytes4"},
			{"name": "data", "type": "bytes"}
		]},
		{"name": "signatureLeft", "type": "bytes"},
		{"name": "orderRight", "type": "tuple", "components": [
			{"name": "maker", "type": "address"},
			{"name": "makeAsset", "type": "tuple", "components": [
				{"name": "assetType", "type": "tuple", "components": [
					{"name": "assetClass", "type": "bytes4"},
					{"name": "data", "type": "bytes"}
				]},
				{"name": "value", "type": "uint256"}
			]},
			{"name": "taker", "type": "address"},
			{"name": "takeAsset", "type": "tuple", "components": [
				{"name": "assetType", "type": "tuple", "components": [
					{"name": "assetClass", "type": "bytes4"},
					{"name": "data", "type": "bytes"}
				]},
				{"name": "value", "type": "uint256"}
			]},
			{"name": "salt", "type": "uint256"},
			{"name": "start", "type": "uint256"},
			{"name": "end", "type": "uint256"},
			{"name": "dataType", "type": "bytes4"},
			{"name": "data", "type": "bytes"}
		]},
		{"name": "signatureRight", "type": "bytes"}
	],
	"outputs": []
}]`

// Go-side mirrors of the LibOrder tuples, field names matching the ABI
// component names.
type raribleAssetType struct {
	AssetClass [4]byte
	Data       []byte
}

type raribleAsset struct {
	AssetType raribleAssetType
	Value     *big.Int
}

type raribleOrder struct {
	Maker     common.Address
	MakeAsset raribleAsset
	Taker     common.Address
	TakeAsset raribleAsset
	Salt      *big.Int
	Start     *big.Int
	End       *big.Int
	DataType  [4]byte
	Data      []byte
}

type rariblePart struct {
	Account common.Address
	Value   *big.Int
}

// raribleOrderData is the JSON payload carried in Order.Data for native
// exchange orders: the maker's payout/origin-fee schedule.
type raribleOrderData struct {
	Payouts    []types.Part `json:"payouts"`
	OriginFees []types.Part `json:"originFees"`
	IsMakeFill bool         `json:"isMakeFill"`
}

// RaribleHandler fulfills native exchange orders through matchOrders,
// synthesizing the buyer's counter-order from the fulfillment request.
type RaribleHandler struct {
	resolver  fees.Resolver
	royalties royalty.Registry
	provider  wallet.Provider
	exchange  common.Address
	abi       abi.ABI
	logger    *zap.Logger
}

// RaribleConfig holds handler configuration.
type RaribleConfig struct {
	Resolver  fees.Resolver
	Royalties royalty.Registry
	Provider  wallet.Provider
	Exchange  common.Address
	Logger    *zap.Logger
}

// NewRaribleHandler creates the native exchange handler.
func NewRaribleHandler(cfg *RaribleConfig) (*RaribleHandler, error) {
	parsed, err := abi.JSON(strings.NewReader(matchOrdersABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse matchOrders ABI: %w", err)
	}

	return &RaribleHandler{
		resolver:  cfg.Resolver,
		royalties: cfg.Royalties,
		provider:  cfg.Provider,
		exchange:  cfg.Exchange,
		abi:       parsed,
		logger:    cfg.Logger,
	}, nil
}

// BaseFee returns the native exchange protocol fee for the order's network.
func (h *RaribleHandler) BaseFee(ctx context.Context, order *types.Order) (int64, error) {
	return h.resolver.BaseFee(ctx, order.Network, types.ProtocolRaribleV2)
}

// Encode builds the matchOrders call for the requested fill.
func (h *RaribleHandler) Encode(ctx context.Context, req *Request) (*wallet.Call, error) {
	order := req.Order

	err := h.checkAssetClasses(order)
	if err != nil {
		return nil, err
	}

	var makerData raribleOrderData
	if len(order.Data) > 0 {
		err = json.Unmarshal(order.Data, &makerData)
		if err != nil {
			return nil, fmt.Errorf("decode order data: %w", err)
		}
	}

	baseFee, err := h.BaseFee(ctx, order)
	if err != nil {
		return nil, err
	}

	royaltyParts, err := h.royalties.GetRoyalties(ctx, order.Make.Type)
	if err != nil {
		return nil, fmt.Errorf("get royalties: %w", err)
	}

	// The exchange reverts on royalty schedules above 50%; failing here
	// spares the caller the gas.
	var royaltyTotal int64
	for _, part := range royaltyParts {
		royaltyTotal += part.Value
	}

	if royaltyTotal > units.BpsDenominator/2 {
		return nil, fmt.Errorf("royalties exceed 50%%: %d bps", royaltyTotal)
	}

	// Fee resolution always precedes amount scaling, which precedes
	// call encoding.

	// The payment side scales up on remainders (maker's favor); the fee
	// legs floor.
	scaledTake := units.ScaleCeil(order.Take.Value, req.Amount, order.FillBase())
	protocolFee := units.Bps(scaledTake, baseFee)

	originTotal := big.NewInt(0)
	for _, part := range req.OriginFees {
		originTotal.Add(originTotal, units.Bps(scaledTake, part.Value))
	}

	left, err := h.makerOrder(order, makerData)
	if err != nil {
		return nil, err
	}

	right, err := h.takerOrder(order, req, scaledTake)
	if err != nil {
		return nil, err
	}

	data, err := h.abi.Pack("matchOrders", left, order.Signature, right, []byte{})
	if err != nil {
		return nil, fmt.Errorf("pack matchOrders: %w", err)
	}

	call := &wallet.Call{
		To:       h.exchange,
		Data:     data,
		Protocol: types.ProtocolRaribleV2,
		Method:   "matchOrders",
	}

	if order.Take.Type.Class == types.ClassETH {
		call.Value = new(big.Int).Add(scaledTake, new(big.Int).Add(protocolFee, originTotal))
	}

	h.logger.Debug("rarible-order-encoded",
		zap.String("scaled-take", scaledTake.String()),
		zap.String("protocol-fee", protocolFee.String()),
		zap.Int("royalties", len(royaltyParts)))

	return call, nil
}

func (h *RaribleHandler) checkAssetClasses(order *types.Order) error {
	switch order.Make.Type.Class {
	case types.ClassERC721, types.ClassERC1155, types.ClassCollection:
	default:
		return fmt.Errorf("%w: make side %q", types.ErrUnsupportedAssetType, order.Make.Type.Class)
	}

	if !order.Take.Type.Class.Fungible() {
		return fmt.Errorf("%w: take side %q", types.ErrUnsupportedAssetType, order.Take.Type.Class)
	}

	return nil
}

// makerOrder converts the signed order into its on-chain tuple form.
func (h *RaribleHandler) makerOrder(order *types.Order, data raribleOrderData) (*raribleOrder, error) {
	makeAsset, err := encodeRaribleAsset(order.Make)
	if err != nil {
		return nil, err
	}

	takeAsset, err := encodeRaribleAsset(order.Take)
	if err != nil {
		return nil, err
	}

	orderData, err := encodeRaribleOrderData(data.Payouts, data.OriginFees, data.IsMakeFill)
	if err != nil {
		return nil, err
	}

	salt := order.Salt
	if salt == nil {
		salt = big.NewInt(0)
	}

	return &raribleOrder{
		Maker:     order.Maker,
		MakeAsset: *makeAsset,
		Taker:     order.Taker,
		TakeAsset: *takeAsset,
		Salt:      salt,
		Start:     new(big.Int).SetUint64(order.Start),
		End:       new(big.Int).SetUint64(order.End),
		DataType:  raribleDataTypeV2(),
		Data:      orderData,
	}, nil
}

// takerOrder synthesizes the inverted counter-order from the fulfiller's
// intent. Salt zero means the exchange accepts it unsigned from msg.sender.
func (h *RaribleHandler) takerOrder(order *types.Order, req *Request, scaledTake *big.Int) (*raribleOrder, error) {
	makeAsset, err := encodeRaribleAsset(types.Asset{Type: order.Take.Type, Value: scaledTake})
	if err != nil {
		return nil, err
	}

	takeAsset, err := encodeRaribleAsset(types.Asset{Type: order.Make.Type, Value: req.Amount})
	if err != nil {
		return nil, err
	}

	payouts := req.Payouts
	if len(payouts) == 0 {
		payouts = []types.Part{{Account: h.provider.From(), Value: units.BpsDenominator}}
	}

	orderData, err := encodeRaribleOrderData(payouts, req.OriginFees, false)
	if err != nil {
		return nil, err
	}

	return &raribleOrder{
		Maker:     h.provider.From(),
		MakeAsset: *makeAsset,
		Taker:     order.Maker,
		TakeAsset: *takeAsset,
		Salt:      big.NewInt(0),
		Start:     big.NewInt(0),
		End:       big.NewInt(0),
		DataType:  raribleDataTypeV2(),
		Data:      orderData,
	}, nil
}

func raribleDataTypeV2() [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte("V2"))[:4])

	return sel
}

// encodeRaribleAsset packs the class-specific payload: nothing for ETH,
// the token address for ERC20 and collections, address+id for NFTs.
func encodeRaribleAsset(asset types.Asset) (*raribleAsset, error) {
	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)

	var (
		data []byte
		err  error
	)

	switch asset.Type.Class {
	case types.ClassETH:
		data = []byte{}
	case types.ClassERC20, types.ClassCollection:
		data, err = abi.Arguments{{Type: addressType}}.Pack(asset.Type.Contract)
	case types.ClassERC721, types.ClassERC1155:
		tokenID := asset.Type.TokenID
		if tokenID == nil {
			return nil, fmt.Errorf("%w: %s asset without token id", types.ErrUnsupportedAssetType, asset.Type.Class)
		}

		data, err = abi.Arguments{{Type: addressType}, {Type: uint256Type}}.Pack(asset.Type.Contract, tokenID)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedAssetType, asset.Type.Class)
	}

	if err != nil {
		return nil, fmt.Errorf("encode asset payload: %w", err)
	}

	return &raribleAsset{
		AssetType: raribleAssetType{
			AssetClass: asset.Type.Class.Selector(),
			Data:       data,
		},
		Value: asset.Value,
	}, nil
}

// encodeRaribleOrderData packs the V2 order data tuple:
// (Part[] payouts, Part[] originFees, bool isMakeFill).
func encodeRaribleOrderData(payouts, originFees []types.Part, isMakeFill bool) ([]byte, error) {
	partType, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "account", Type: "address"},
		{Name: "value", Type: "uint96"},
	})
	if err != nil {
		return nil, fmt.Errorf("build part type: %w", err)
	}

	boolType, _ := abi.NewType("bool", "", nil)

	toABI := func(parts []types.Part) []rariblePart {
		out := make([]rariblePart, 0, len(parts))
		for _, p := range parts {
			out = append(out, rariblePart{Account: p.Account, Value: big.NewInt(p.Value)})
		}

		return out
	}

	packed, err := abi.Arguments{
		{Type: partType},
		{Type: partType},
		{Type: boolType},
	}.Pack(toABI(payouts), toABI(originFees), isMakeFill)
	if err != nil {
		return nil, fmt.Errorf("encode order data: %w", err)
	}

	return packed, nil
}
