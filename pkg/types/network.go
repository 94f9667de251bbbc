package types

import "math/big"

// chainIDs maps supported network names to EVM chain ids.
var chainIDs = map[string]int64{
	"mainnet": 1,
	"goerli":  5,
	"sepolia": 11155111,
	"polygon": 137,
	"mumbai":  80001,
}

// ChainID resolves a network name to its chain id.
func ChainID(network string) (*big.Int, bool) {
	id, ok := chainIDs[network]
	if !ok {
		return nil, false
	}

	return big.NewInt(id), true
}
