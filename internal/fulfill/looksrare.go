package fulfill

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/internal/fees"
	"github.com/yiinote/ethereum-sdk/pkg/types"
	"github.com/yiinote/ethereum-sdk/pkg/units"
	"github.com/yiinote/ethereum-sdk/pkg/wallet"
)

const looksrareExchangeABIJSON = `[
	{
		"name": "matchAskWithTakerBid",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "takerBid", "type": "tuple", "components": [
				{"name": "isOrderAsk", "type": "bool"},
				{"name": "taker", "type": "address"},
				{"name": "price", "type": "uint256"},
				{"name": "tokenId", "type": "uint256"},
				{"name": "minPercentageToAsk", "type": "uint256"},
				{"name": "params", "type": "bytes"}
			]},
			{"name": "makerAsk", "type": "tuple", "components": [
				{"name": "isOrderAsk", "type": "bool"},
				{"name": "signer", "type": "address"},
				{"name": "collection", "type": "address"},
				{"name": "price", "type": "uint256"},
				{"name": "tokenId", "type": "uint256"},
				{"name": "amount", "type": "uint256"},
				{"name": "strategy", "type": "address"},
				{"name": "currency", "type": "address"},
				{"name": "nonce", "type": "uint256"},
				{"name": "startTime", "type": "uint256"},
				{"name": "endTime", "type": "uint256"},
				{"name": "minPercentageToAsk", "type": "uint256"},
				{"name": "params", "type": "bytes"},
				{"name": "v", "type": "uint8"},
				{"name": "r", "type": "bytes32"},
				{"name": "s", "type": "bytes32"}
			]}
		],
		"outputs": []
	},
	{
		"name": "matchAskWithTakerBidUsingETHAndWETH",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "takerBid", "type": "tuple", "components": [
				{"name": "isOrderAsk", "type": "bool"},
				{"name": "taker", "type": "address"},
				{"name": "price", "type": "uint256"},
				{"name": "tokenId", "type": "uint256"},
				{"name": "minPercentageToAsk", "type": "uint256"},
				{"name": "params", "type": "bytes"}
			]},
			{"name": "makerAsk", "type": "tuple", "components": [
				{"name": "isOrderAsk", "type": "bool"},
				{"name": "signer", "type": "address"},
				{"name": "collection", "type": "address"},
				{"name": "price", "type": "uint256"},
				{"name": "tokenId", "type": "uint256"},
				{"name": "amount", "type": "uint256"},
				{"name": "strategy", "type": "address"},
				{"name": "currency", "type": "address"},
				{"name": "nonce", "type": "uint256"},
				{"name": "startTime", "type": "uint256"},
				{"name": "endTime", "type": "uint256"},
				{"name": "minPercentageToAsk", "type": "uint256"},
				{"name": "params", "type": "bytes"},
				{"name": "v", "type": "uint8"},
				{"name": "r", "type": "bytes32"},
				{"name": "s", "type": "bytes32"}
			]}
		],
		"outputs": []
	},
	{
		"name": "isUserOrderNonceExecutedOrCancelled",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "user", "type": "address"},
			{"name": "orderNonce", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	}
]`

// The wrapper routes a purchase through the exchange and pays the
// caller-supplied origin fees from attached value in the same transaction.
const exchangeWrapperABIJSON = `[{
	"name": "singlePurchase",
	"type": "function",
	"stateMutability": "payable",
	"inputs": [
		{"name": "purchaseDetails", "type": "tuple", "components": [
			{"name": "marketId", "type": "uint256"},
			{"name": "amount", "type": "uint256"},
			{"name": "data", "type": "bytes"}
		]},
		{"name": "additionalRecipients", "type": "address[]"},
		{"name": "additionalAmounts", "type": "uint256[]"}
	],
	"outputs": []
}]`

// Wrapper market id for the LooksRare exchange.
var looksrareMarketID = big.NewInt(2)

type looksrareTakerOrder struct {
	IsOrderAsk         bool
	Taker              common.Address
	Price              *big.Int
	TokenId            *big.Int
	MinPercentageToAsk *big.Int
	Params             []byte
}

type looksrareMakerOrder struct {
	IsOrderAsk         bool
	Signer             common.Address
	Collection         common.Address
	Price              *big.Int
	TokenId            *big.Int
	Amount             *big.Int
	Strategy           common.Address
	Currency           common.Address
	Nonce              *big.Int
	StartTime          *big.Int
	EndTime            *big.Int
	MinPercentageToAsk *big.Int
	Params             []byte
	V                  uint8
	R                  [32]byte
	S                  [32]byte
}

type looksrarePurchaseDetails struct {
	MarketId *big.Int
	Amount   *big.Int
	Data     []byte
}

// Wire format of the protocol payload in Order.Data for LooksRare orders.
type looksrareOrderData struct {
	Strategy           common.Address `json:"strategy"`
	Currency           common.Address `json:"currency"`
	Nonce              string         `json:"nonce"`
	MinPercentageToAsk int64          `json:"minPercentageToAsk"`
	Params             hexutil.Bytes  `json:"params"`
}

// LooksRareHandler fulfills maker asks through matchAskWithTakerBid.
// LooksRare has no partial fills and tracks cancellation by nonce, so
// the handler reads nonce status on-chain before encoding. Origin fees
// are routed through the exchange wrapper because the exchange itself
// has no fee hook for the taker side.
type LooksRareHandler struct {
	resolver fees.Resolver
	provider wallet.Provider
	caller   ethereum.ContractCaller
	exchange common.Address
	wrapper  common.Address // zero when no wrapper is deployed
	abi      abi.ABI
	wrapABI  abi.ABI
	logger   *zap.Logger
}

// LooksRareConfig holds handler configuration.
type LooksRareConfig struct {
	Resolver fees.Resolver
	Provider wallet.Provider
	Caller   ethereum.ContractCaller
	Exchange common.Address
	Wrapper  common.Address
	Logger   *zap.Logger
}

// NewLooksRareHandler creates the LooksRare handler.
func NewLooksRareHandler(cfg *LooksRareConfig) (*LooksRareHandler, error) {
	parsed, err := abi.JSON(strings.NewReader(looksrareExchangeABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse looksrare exchange ABI: %w", err)
	}

	wrapParsed, err := abi.JSON(strings.NewReader(exchangeWrapperABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse exchange wrapper ABI: %w", err)
	}

	return &LooksRareHandler{
		resolver: cfg.Resolver,
		provider: cfg.Provider,
		caller:   cfg.Caller,
		exchange: cfg.Exchange,
		wrapper:  cfg.Wrapper,
		abi:      parsed,
		wrapABI:  wrapParsed,
		logger:   cfg.Logger,
	}, nil
}

// BaseFee returns the LooksRare protocol fee for the order's network.
func (h *LooksRareHandler) BaseFee(ctx context.Context, order *types.Order) (int64, error) {
	return h.resolver.BaseFee(ctx, order.Network, types.ProtocolLooksRare)
}

// Encode builds the exchange (or wrapper) call for the requested fill.
func (h *LooksRareHandler) Encode(ctx context.Context, req *Request) (*wallet.Call, error) {
	order := req.Order

	err := h.checkAssetClasses(order)
	if err != nil {
		return nil, err
	}

	// All-or-nothing: the strategy contract matches the signed amount
	// exactly, there is no fraction to pass.
	if req.Amount.Cmp(order.FillBase()) != 0 {
		return nil, fmt.Errorf("%w: requested %s of %s",
			types.ErrPartialFillNotSupported, req.Amount, order.FillBase())
	}

	var data looksrareOrderData
	err = json.Unmarshal(order.Data, &data)
	if err != nil {
		return nil, fmt.Errorf("decode order data: %w", err)
	}

	nonce, ok := new(big.Int).SetString(defaultZero(data.Nonce), 10)
	if !ok {
		return nil, fmt.Errorf("invalid nonce %q", data.Nonce)
	}

	// Fee schedule lookup runs before the chain read so config errors
	// surface cheaply.
	_, err = h.BaseFee(ctx, order)
	if err != nil {
		return nil, err
	}

	executed, err := h.nonceExecutedOrCancelled(ctx, order.Maker, nonce)
	if err != nil {
		return nil, err
	}

	if executed {
		return nil, fmt.Errorf("%w: maker nonce %s executed or cancelled",
			types.ErrOrderExpired, nonce)
	}

	if len(order.Signature) != 65 {
		return nil, fmt.Errorf("invalid signature length %d", len(order.Signature))
	}

	price := order.Take.Value
	tokenID := order.Make.Type.TokenID
	if tokenID == nil {
		return nil, fmt.Errorf("%w: make side missing token id", types.ErrUnsupportedAssetType)
	}

	isETH := order.Take.Type.Class == types.ClassETH

	taker := h.provider.From()
	if h.wrapper != (common.Address{}) && len(req.OriginFees) > 0 {
		// The wrapper is the msg.sender on the exchange and receives the
		// asset before forwarding it.
		taker = h.wrapper
	}

	makerAsk := looksrareMakerOrder{
		IsOrderAsk:         true,
		Signer:             order.Maker,
		Collection:         order.Make.Type.Contract,
		Price:              price,
		TokenId:            tokenID,
		Amount:             order.Make.Value,
		Strategy:           data.Strategy,
		Currency:           data.Currency,
		Nonce:              nonce,
		StartTime:          new(big.Int).SetUint64(order.Start),
		EndTime:            new(big.Int).SetUint64(order.End),
		MinPercentageToAsk: big.NewInt(data.MinPercentageToAsk),
		Params:             data.Params,
		V:                  signatureV(order.Signature),
		R:                  [32]byte(order.Signature[0:32]),
		S:                  [32]byte(order.Signature[32:64]),
	}

	takerBid := looksrareTakerOrder{
		IsOrderAsk:         false,
		Taker:              taker,
		Price:              price,
		TokenId:            tokenID,
		MinPercentageToAsk: big.NewInt(data.MinPercentageToAsk),
		Params:             []byte{},
	}

	method := "matchAskWithTakerBid"
	if isETH {
		method = "matchAskWithTakerBidUsingETHAndWETH"
	}

	packed, err := h.abi.Pack(method, takerBid, makerAsk)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	call := &wallet.Call{
		To:       h.exchange,
		Data:     packed,
		Protocol: types.ProtocolLooksRare,
		Method:   method,
	}

	if isETH {
		call.Value = new(big.Int).Set(price)
	}

	if len(req.OriginFees) > 0 {
		call, err = h.wrapWithOriginFees(call, price, req.OriginFees, isETH)
		if err != nil {
			return nil, err
		}
	}

	h.logger.Debug("looksrare-order-encoded",
		zap.String("method", call.Method),
		zap.String("price", price.String()),
		zap.String("nonce", nonce.String()),
		zap.Int("origin-fees", len(req.OriginFees)))

	return call, nil
}

func (h *LooksRareHandler) checkAssetClasses(order *types.Order) error {
	switch order.Make.Type.Class {
	case types.ClassERC721, types.ClassERC1155:
	default:
		return fmt.Errorf("%w: make side %q", types.ErrUnsupportedAssetType, order.Make.Type.Class)
	}

	switch order.Take.Type.Class {
	case types.ClassETH, types.ClassERC20:
	default:
		return fmt.Errorf("%w: take side %q", types.ErrUnsupportedAssetType, order.Take.Type.Class)
	}

	return nil
}

// wrapWithOriginFees re-targets the call at the exchange wrapper, which
// executes the purchase and forwards each origin fee from the attached
// value.
func (h *LooksRareHandler) wrapWithOriginFees(inner *wallet.Call, price *big.Int, originFees []types.Part, isETH bool) (*wallet.Call, error) {
	if h.wrapper == (common.Address{}) {
		return nil, fmt.Errorf("origin fees require an exchange wrapper address")
	}

	recipients := make([]common.Address, 0, len(originFees))
	amounts := make([]*big.Int, 0, len(originFees))
	feeTotal := big.NewInt(0)

	for _, part := range originFees {
		fee := units.Bps(price, part.Value)
		if fee.Sign() == 0 {
			continue
		}

		recipients = append(recipients, part.Account)
		amounts = append(amounts, fee)
		feeTotal.Add(feeTotal, fee)
	}

	details := looksrarePurchaseDetails{
		MarketId: looksrareMarketID,
		Amount:   new(big.Int).Set(price),
		Data:     inner.Data,
	}

	packed, err := h.wrapABI.Pack("singlePurchase", details, recipients, amounts)
	if err != nil {
		return nil, fmt.Errorf("pack singlePurchase: %w", err)
	}

	call := &wallet.Call{
		To:       h.wrapper,
		Data:     packed,
		Protocol: types.ProtocolLooksRare,
		Method:   "singlePurchase",
	}

	if isETH {
		call.Value = new(big.Int).Add(price, feeTotal)
	}

	return call, nil
}

func (h *LooksRareHandler) nonceExecutedOrCancelled(ctx context.Context, maker common.Address, nonce *big.Int) (bool, error) {
	input, err := h.abi.Pack("isUserOrderNonceExecutedOrCancelled", maker, nonce)
	if err != nil {
		return false, fmt.Errorf("pack nonce check: %w", err)
	}

	output, err := h.caller.CallContract(ctx, ethereum.CallMsg{To: &h.exchange, Data: input}, nil)
	if err != nil {
		h.logger.Warn("nonce-check-failed",
			zap.String("maker", maker.Hex()),
			zap.Error(err))
		return false, fmt.Errorf("%w: nonce check: %v", types.ErrNetworkError, err)
	}

	var executed bool
	err = h.abi.UnpackIntoInterface(&executed, "isUserOrderNonceExecutedOrCancelled", output)
	if err != nil {
		return false, fmt.Errorf("unpack nonce check: %w", err)
	}

	return executed, nil
}

func signatureV(sig []byte) uint8 {
	v := sig[64]
	if v < 27 {
		v += 27
	}

	return v
}
