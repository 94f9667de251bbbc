package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AssetClass identifies the kind of asset one side of an order transfers.
type AssetClass string

// Supported asset classes. The set is closed: handlers reject anything else.
const (
	ClassETH        AssetClass = "ETH"
	ClassERC20      AssetClass = "ERC20"
	ClassERC721     AssetClass = "ERC721"
	ClassERC1155    AssetClass = "ERC1155"
	ClassCollection AssetClass = "COLLECTION"
)

// Selector returns the 4-byte asset class id used by the native exchange
// contract, bytes4(keccak256(class)).
func (c AssetClass) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(c))[:4])
	return sel
}

// Valid reports whether the class belongs to the supported set.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassETH, ClassERC20, ClassERC721, ClassERC1155, ClassCollection:
		return true
	}

	return false
}

// Fungible reports whether the class denominates a divisible payment asset.
func (c AssetClass) Fungible() bool {
	return c == ClassETH || c == ClassERC20
}

// AssetType identifies a concrete on-chain asset: class plus, where the
// class requires them, contract address and token id.
type AssetType struct {
	Class    AssetClass
	Contract common.Address
	TokenID  *big.Int
}

// Equal compares class, contract and token id structurally.
func (t AssetType) Equal(other AssetType) bool {
	if t.Class != other.Class || t.Contract != other.Contract {
		return false
	}

	if t.TokenID == nil || other.TokenID == nil {
		return t.TokenID == other.TokenID
	}

	return t.TokenID.Cmp(other.TokenID) == 0
}

// Asset pairs an asset type with an amount in base units.
type Asset struct {
	Type  AssetType
	Value *big.Int
}
