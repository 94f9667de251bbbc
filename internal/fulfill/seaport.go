package fulfill

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fees"
	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/units"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

const fulfillAdvancedOrderABIJSON = `[{
	"name": "fulfillAdvancedOrder",
	"type": "function",
	"stateMutability": "payable",
	"inputs": [
		{"name": "advancedOrder", "type": "tuple", "components": [
			{"name": "parameters", "type": "tuple", "components": [
				{"name": "offerer", "type": "address"},
				{"name": "zone", "type": "address"},
				{"name": "offer", "type": "tuple[]", "components": [
					{"name": "itemType", "type": "uint8"},
					{"name": "token", "type": "address"},
					{"name": "identifierOrCriteria", "type": "uint256"},
					{"name": "startAmount", "type": "uint256"},
					{"name": "endAmount", "type": "uint256"}
				]},
				{"name": "consideration", "type": "tuple[]", "components": [
					{"name": "itemType", "type": "uint8"},
					{"name": "token", "type": "address"},
					{"name": "identifierOrCriteria", "type": "uint256"},
					{"name": "startAmount", "type": "uint256"},
					{"name": "endAmount", "type": "uint256"},
					{"name": "recipient", "type": "address"}
				]},
				{"name": "orderType", "type": "uint8"},
				{"name": "startTime", "type": "uint256"},
				{"name": "endTime", "type": "uint256"},
				{"name": "zoneHash", "type": "bytes32"},
				{"name": "salt", "type": "uint256"},
				{"name": "conduitKey", "type": "bytes32"},
				{"name": "totalOriginalConsiderationItems", "type": "uint256"}
			]},
			{"name": "numerator", "type": "uint120"},
			{"name": "denominator", "type": "uint120"},
			{"name": "signature", "type": "bytes"},
			{"name": "extraData", "type": "bytes"}
		]},
		{"name": "criteriaResolvers", "type": "tuple[]", "components": [
			{"name": "orderIndex", "type": "uint256"},
			{"name": "side", "type": "uint8"},
			{"name": "index", "type": "uint256"},
			{"name": "identifier", "type": "uint256"},
			{"name": "criteriaProof", "type": "bytes32[]"}
		]},
		{"name": "fulfillerConduitKey", "type": "bytes32"},
		{"name": "recipient", "type": "address"}
	],
	"outputs": [{"name": "fulfilled", "type": "bool"}]
}]`

// Seaport item type enum values.
const (
	seaportItemNative  = 0
	seaportItemERC20   = 1
	seaportItemERC721  = 2
	seaportItemERC1155 = 3
)

type seaportOfferItem struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
}

type seaportConsiderationItem struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
	Recipient            common.Address
}

type seaportParameters struct {
	Offerer                         common.Address
	Zone                            common.Address
	Offer                           []seaportOfferItem
	Consideration                   []seaportConsiderationItem
	OrderType                       uint8
	StartTime                       *big.Int
	EndTime                         *big.Int
	ZoneHash                        [32]byte
	Salt                            *big.Int
	ConduitKey                      [32]byte
	TotalOriginalConsiderationItems *big.Int
}

type seaportAdvancedOrder struct {
	Parameters  seaportParameters
	Numerator   *big.Int
	Denominator *big.Int
	Signature   []byte
	ExtraData   []byte
}

type seaportCriteriaResolver struct {
	OrderIndex    *big.Int
	Side          uint8
	Index         *big.Int
	Identifier    *big.Int
	CriteriaProof [][32]byte
}

// Wire format of the protocol payload in Order.Data for Seaport orders.
type seaportItemJSON struct {
	ItemType    uint8          `json:"itemType"`
	Token       common.Address `json:"token"`
	Identifier  string         `json:"identifierOrCriteria"`
	StartAmount string         `json:"startAmount"`
	EndAmount   string         `json:"endAmount"`
}

type seaportConsiderationJSON struct {
	seaportItemJSON
	Recipient common.Address `json:"recipient"`
}

type seaportOrderData struct {
	Zone          common.Address             `json:"zone"`
	ZoneHash      common.Hash                `json:"zoneHash"`
	OrderType     uint8                      `json:"orderType"`
	ConduitKey    common.Hash                `json:"conduitKey"`
	Offer         []seaportItemJSON          `json:"offer"`
	Consideration []seaportConsiderationJSON `json:"consideration"`
}

// SeaportHandler fulfills Seaport orders through fulfillAdvancedOrder.
// Origin fees and the protocol fee ride along as extra consideration
// items appended after the signed ones.
type SeaportHandler struct {
	resolver     fees.Resolver
	provider     wallet.Provider
	exchange     common.Address
	feeRecipient common.Address
	abi          abi.ABI
	logger       *zap.Logger
}

// SeaportConfig holds handler configuration.
type SeaportConfig struct {
	Resolver     fees.Resolver
	Provider     wallet.Provider
	Exchange     common.Address
	FeeRecipient common.Address
	Logger       *zap.Logger
}

// NewSeaportHandler creates the Seaport handler.
func NewSeaportHandler(cfg *SeaportConfig) (*SeaportHandler, error) {
	parsed, err := abi.JSON(strings.NewReader(fulfillAdvancedOrderABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse fulfillAdvancedOrder ABI: %w", err)
	}

	return &SeaportHandler{
		resolver:     cfg.Resolver,
		provider:     cfg.Provider,
		exchange:     cfg.Exchange,
		feeRecipient: cfg.FeeRecipient,
		abi:          parsed,
		logger:       cfg.Logger,
	}, nil
}

// BaseFee returns the Seaport protocol fee for the order's network.
func (h *SeaportHandler) BaseFee(ctx context.Context, order *types.Order) (int64, error) {
	return h.resolver.BaseFee(ctx, order.Network, types.ProtocolSeaport)
}

// Encode builds the fulfillAdvancedOrder call for the requested fill.
func (h *SeaportHandler) Encode(ctx context.Context, req *Request) (*wallet.Call, error) {
	order := req.Order

	err := h.checkAssetClasses(order)
	if err != nil {
		return nil, err
	}

	var data seaportOrderData
	err = json.Unmarshal(order.Data, &data)
	if err != nil {
		return nil, fmt.Errorf("decode order data: %w", err)
	}

	if len(data.Offer) == 0 || len(data.Consideration) == 0 {
		return nil, fmt.Errorf("order data missing offer or consideration")
	}

	baseFee, err := h.BaseFee(ctx, order)
	if err != nil {
		return nil, err
	}

	// Seaport applies the fill fraction on-chain to every item, so the
	// fraction must divide each signed amount exactly. Restricting the
	// reduced numerator to 1 keeps appended fee items exact too.
	num, den := units.ReduceFraction(req.Amount, order.FillBase())
	if num.Cmp(big.NewInt(1)) != 0 && num.Cmp(den) != 0 {
		return nil, fmt.Errorf("%w: fill fraction %s/%s is not an exact divisor",
			types.ErrPartialFillNotSupported, num, den)
	}

	offer, err := convertSeaportOffer(data.Offer)
	if err != nil {
		return nil, err
	}

	consideration, err := convertSeaportConsideration(data.Consideration)
	if err != nil {
		return nil, err
	}

	err = checkSeaportDivisibility(offer, consideration, num, den)
	if err != nil {
		return nil, err
	}

	// Fee legs are computed on the scaled price and appended at
	// full-order scale so the on-chain fraction lands back on the exact
	// floor-divided share.
	scaledTake := units.Scale(order.Take.Value, num, den)
	protocolFee := units.Bps(scaledTake, baseFee)

	payment := data.Consideration[0]

	totalValue := big.NewInt(0)
	for _, item := range consideration {
		totalValue.Add(totalValue, units.Scale(item.StartAmount, num, den))
	}

	feeItems := make([]seaportConsiderationItem, 0, 1+len(req.OriginFees))
	if protocolFee.Sign() > 0 {
		feeItems = append(feeItems, h.feeItem(payment, protocolFee, den, h.feeRecipient))
		totalValue.Add(totalValue, protocolFee)
	}

	for _, part := range req.OriginFees {
		originFee := units.Bps(scaledTake, part.Value)
		if originFee.Sign() == 0 {
			continue
		}

		feeItems = append(feeItems, h.feeItem(payment, originFee, den, part.Account))
		totalValue.Add(totalValue, originFee)
	}

	salt := order.Salt
	if salt == nil {
		salt = big.NewInt(0)
	}

	parameters := seaportParameters{
		Offerer:                         order.Maker,
		Zone:                            data.Zone,
		Offer:                           offer,
		Consideration:                   append(consideration, feeItems...),
		OrderType:                       data.OrderType,
		StartTime:                       new(big.Int).SetUint64(order.Start),
		EndTime:                         new(big.Int).SetUint64(order.End),
		ZoneHash:                        data.ZoneHash,
		Salt:                            salt,
		ConduitKey:                      data.ConduitKey,
		TotalOriginalConsiderationItems: big.NewInt(int64(len(consideration))),
	}

	advanced := seaportAdvancedOrder{
		Parameters:  parameters,
		Numerator:   num,
		Denominator: den,
		Signature:   order.Signature,
		ExtraData:   []byte{},
	}

	packed, err := h.abi.Pack("fulfillAdvancedOrder",
		advanced,
		[]seaportCriteriaResolver{},
		[32]byte{},
		h.provider.From(),
	)
	if err != nil {
		return nil, fmt.Errorf("pack fulfillAdvancedOrder: %w", err)
	}

	call := &wallet.Call{
		To:       h.exchange,
		Data:     packed,
		Protocol: types.ProtocolSeaport,
		Method:   "fulfillAdvancedOrder",
	}

	if payment.ItemType == seaportItemNative {
		call.Value = totalValue
	}

	h.logger.Debug("seaport-order-encoded",
		zap.String("numerator", num.String()),
		zap.String("denominator", den.String()),
		zap.String("protocol-fee", protocolFee.String()),
		zap.Int("fee-items", len(feeItems)))

	return call, nil
}

func (h *SeaportHandler) checkAssetClasses(order *types.Order) error {
	switch order.Make.Type.Class {
	case types.ClassERC721, types.ClassERC1155:
	default:
		return fmt.Errorf("%w: make side %q", types.ErrUnsupportedAssetType, order.Make.Type.Class)
	}

	if !order.Take.Type.Class.Fungible() {
		return fmt.Errorf("%w: take side %q", types.ErrUnsupportedAssetType, order.Take.Type.Class)
	}

	return nil
}

// feeItem builds an appended consideration item that scales back to the
// exact per-fill fee under the num=1 fraction.
func (h *SeaportHandler) feeItem(payment seaportConsiderationJSON, scaledFee, den *big.Int, recipient common.Address) seaportConsiderationItem {
	full := new(big.Int).Mul(scaledFee, den)

	return seaportConsiderationItem{
		ItemType:             payment.ItemType,
		Token:                payment.Token,
		IdentifierOrCriteria: big.NewInt(0),
		StartAmount:          full,
		EndAmount:            new(big.Int).Set(full),
		Recipient:            recipient,
	}
}

func convertSeaportOffer(items []seaportItemJSON) ([]seaportOfferItem, error) {
	out := make([]seaportOfferItem, 0, len(items))

	for _, item := range items {
		identifier, startAmount, endAmount, err := parseSeaportAmounts(item)
		if err != nil {
			return nil, err
		}

		out = append(out, seaportOfferItem{
			ItemType:             item.ItemType,
			Token:                item.Token,
			IdentifierOrCriteria: identifier,
			StartAmount:          startAmount,
			EndAmount:            endAmount,
		})
	}

	return out, nil
}

func convertSeaportConsideration(items []seaportConsiderationJSON) ([]seaportConsiderationItem, error) {
	out := make([]seaportConsiderationItem, 0, len(items))

	for _, item := range items {
		identifier, startAmount, endAmount, err := parseSeaportAmounts(item.seaportItemJSON)
		if err != nil {
			return nil, err
		}

		out = append(out, seaportConsiderationItem{
			ItemType:             item.ItemType,
			Token:                item.Token,
			IdentifierOrCriteria: identifier,
			StartAmount:          startAmount,
			EndAmount:            endAmount,
			Recipient:            item.Recipient,
		})
	}

	return out, nil
}

func parseSeaportAmounts(item seaportItemJSON) (*big.Int, *big.Int, *big.Int, error) {
	identifier, ok := new(big.Int).SetString(defaultZero(item.Identifier), 10)
	if !ok {
		return nil, nil, nil, fmt.Errorf("invalid identifier %q", item.Identifier)
	}

	startAmount, ok := new(big.Int).SetString(defaultZero(item.StartAmount), 10)
	if !ok {
		return nil, nil, nil, fmt.Errorf("invalid start amount %q", item.StartAmount)
	}

	endAmount, ok := new(big.Int).SetString(defaultZero(item.EndAmount), 10)
	if !ok {
		return nil, nil, nil, fmt.Errorf("invalid end amount %q", item.EndAmount)
	}

	return identifier, startAmount, endAmount, nil
}

func defaultZero(s string) string {
	if s == "" {
		return "0"
	}

	return s
}

// checkSeaportDivisibility rejects fills whose fraction leaves a remainder
// on any signed item. The dispatcher has already ensured non-partial orders
// fill whole, so a remainder on one of those means the order itself is
// malformed.
func checkSeaportDivisibility(offer []seaportOfferItem, consideration []seaportConsiderationItem, num, den *big.Int) error {
	check := func(value *big.Int) error {
		if _, exact := units.ScaleExact(value, num, den); !exact {
			return fmt.Errorf("%w: fraction %s/%s leaves remainder on amount %s",
				types.ErrPartialFillNotSupported, num, den, value)
		}

		return nil
	}

	for _, item := range offer {
		if err := check(item.StartAmount); err != nil {
			return err
		}
	}

	for _, item := range consideration {
		if err := check(item.StartAmount); err != nil {
			return err
		}
	}

	return nil
}
