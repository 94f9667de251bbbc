// Package orderbook is the client for the off-chain order book service:
// point reads over HTTP and a live order-event stream over WebSocket.
package orderbook

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

// AssetTypeDTO is the wire shape of an asset type. Numeric fields travel
// as decimal strings.
type AssetTypeDTO struct {
	AssetClass string `json:"assetClass"`
	Contract   string `json:"contract,omitempty"`
	TokenID    string `json:"tokenId,omitempty"`
}

// AssetDTO is the wire shape of one order side.
type AssetDTO struct {
	AssetType AssetTypeDTO `json:"assetType"`
	Value     string       `json:"value"`
}

// OrderDTO is the order book's JSON representation of an order.
type OrderDTO struct {
	Maker            string          `json:"maker"`
	Taker            string          `json:"taker,omitempty"`
	Make             AssetDTO        `json:"make"`
	Take             AssetDTO        `json:"take"`
	Salt             string          `json:"salt"`
	Start            uint64          `json:"start,omitempty"`
	End              uint64          `json:"end,omitempty"`
	Fill             string          `json:"fill,omitempty"`
	AllowPartialFill bool            `json:"allowPartialFill"`
	IsMakeFill       bool            `json:"isMakeFill"`
	Network          string          `json:"network"`
	Type             string          `json:"type"`
	Data             json.RawMessage `json:"data,omitempty"`
	Signature        string          `json:"signature,omitempty"`
}

// OrderEvent is one message from the order stream.
type OrderEvent struct {
	EventType string   `json:"eventType"`
	OrderHash string   `json:"orderHash"`
	Order     OrderDTO `json:"order"`
}

// Stream event types emitted by the order book service.
const (
	EventOrderUpdate = "ORDER_UPDATE"
	EventOrderCancel = "ORDER_CANCEL"
)

// ToOrder converts the wire representation into the engine's order model.
func (d *OrderDTO) ToOrder() (*types.Order, error) {
	make, err := d.Make.toAsset()
	if err != nil {
		return nil, fmt.Errorf("make side: %w", err)
	}

	take, err := d.Take.toAsset()
	if err != nil {
		return nil, fmt.Errorf("take side: %w", err)
	}

	salt, ok := new(big.Int).SetString(defaultDecimal(d.Salt), 10)
	if !ok {
		return nil, fmt.Errorf("invalid salt %q", d.Salt)
	}

	fill, ok := new(big.Int).SetString(defaultDecimal(d.Fill), 10)
	if !ok {
		return nil, fmt.Errorf("invalid fill %q", d.Fill)
	}

	var signature []byte
	if d.Signature != "" {
		signature, err = hexutil.Decode(d.Signature)
		if err != nil {
			return nil, fmt.Errorf("invalid signature: %w", err)
		}
	}

	order := &types.Order{
		Maker:            common.HexToAddress(d.Maker),
		Taker:            common.HexToAddress(d.Taker),
		Make:             *make,
		Take:             *take,
		Salt:             salt,
		Start:            d.Start,
		End:              d.End,
		Fill:             fill,
		AllowPartialFill: d.AllowPartialFill,
		IsMakeFill:       d.IsMakeFill,
		Network:          d.Network,
		Protocol:         types.Protocol(d.Type),
		Data:             d.Data,
		Signature:        signature,
	}

	return order, nil
}

func (a *AssetDTO) toAsset() (*types.Asset, error) {
	class := types.AssetClass(a.AssetType.AssetClass)
	if !class.Valid() {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedAssetType, a.AssetType.AssetClass)
	}

	value, ok := new(big.Int).SetString(defaultDecimal(a.Value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid value %q", a.Value)
	}

	assetType := types.AssetType{
		Class:    class,
		Contract: common.HexToAddress(a.AssetType.Contract),
	}

	if a.AssetType.TokenID != "" {
		tokenID, ok := new(big.Int).SetString(a.AssetType.TokenID, 10)
		if !ok {
			return nil, fmt.Errorf("invalid token id %q", a.AssetType.TokenID)
		}

		assetType.TokenID = tokenID
	}

	return &types.Asset{Type: assetType, Value: value}, nil
}

func defaultDecimal(s string) string {
	if s == "" {
		return "0"
	}

	return s
}
