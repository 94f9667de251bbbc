package types

import (
	"math/big"

	json "github.com/goccy/go-json"

	"github.com/ethereum/go-ethereum/common"
)

// Protocol discriminates which exchange protocol produced and governs an
// order. The set is closed: the dispatcher rejects unregistered tags.
type Protocol string

const (
	ProtocolRaribleV2 Protocol = "RARIBLE_V2"
	ProtocolSeaport   Protocol = "SEAPORT_V1"
	ProtocolLooksRare Protocol = "LOOKSRARE"
)

// Part is a (recipient, basis points) pair used for origin fees, payouts
// and royalties. Value is on the 0..10000 scale.
type Part struct {
	Account common.Address `json:"account"`
	Value   int64          `json:"value"`
}

// Order is the normalized projection of an exchange order. Protocol-specific
// payload (maker signature extras, Seaport parameters, LooksRare strategy)
// lives in Data and is decoded by the matching handler.
type Order struct {
	Maker common.Address
	Taker common.Address // zero address when the order is open to anyone
	Make  Asset
	Take  Asset

	Salt  *big.Int
	Start uint64 // unix seconds, 0 = unbounded
	End   uint64 // unix seconds, 0 = unbounded

	// Fill is the cumulative quantity already consumed on-chain, in the
	// order's fill unit (see FillBase). Monotonically non-decreasing.
	Fill *big.Int

	AllowPartialFill bool

	// IsMakeFill selects the side Fill is counted in. Sell orders track
	// fill on the make side (NFT editions), bids on the take side.
	IsMakeFill bool

	Network   string
	Protocol  Protocol
	Data      json.RawMessage
	Signature []byte
}

// FillBase returns the total fillable quantity in the order's fill unit.
func (o *Order) FillBase() *big.Int {
	if o.IsMakeFill {
		return o.Make.Value
	}

	return o.Take.Value
}

// Remaining returns the quantity still available to fill.
func (o *Order) Remaining() *big.Int {
	base := o.FillBase()
	if o.Fill == nil {
		return new(big.Int).Set(base)
	}

	rem := new(big.Int).Sub(base, o.Fill)
	if rem.Sign() < 0 {
		return big.NewInt(0)
	}

	return rem
}

// Terminal reports whether the order can accept no further fills.
func (o *Order) Terminal() bool {
	return o.Remaining().Sign() == 0
}

// ActiveAt reports whether now falls inside the order's [Start, End) window.
func (o *Order) ActiveAt(now uint64) bool {
	if o.Start != 0 && now < o.Start {
		return false
	}

	if o.End != 0 && now >= o.End {
		return false
	}

	return true
}
