package types

import "errors"

// Fulfillment error taxonomy. All validation errors are raised before any
// network call; callers match with errors.Is.
var (
	// ErrInsufficientFillAmount means the requested amount is zero,
	// negative, or exceeds the order's remaining fillable quantity.
	ErrInsufficientFillAmount = errors.New("insufficient fill amount")

	// ErrPartialFillNotSupported is returned for orders that must be
	// filled whole. Callers substring-match on this message.
	ErrPartialFillNotSupported = errors.New("order is not supported partial fill")

	// ErrChainMismatch means the connected wallet's chain does not match
	// the order's origin network.
	ErrChainMismatch = errors.New("wallet chain does not match order network")

	// ErrUnsupportedProtocol means the order's protocol tag has no
	// registered handler.
	ErrUnsupportedProtocol = errors.New("unsupported order protocol")

	// ErrUnsupportedAssetType means an asset class falls outside the
	// protocol's supported set.
	ErrUnsupportedAssetType = errors.New("unsupported asset type")

	// ErrOrderExpired means the current time is outside [start, end),
	// or the order was cancelled on-chain.
	ErrOrderExpired = errors.New("order expired")

	// ErrFeeConfigMissing means the fee schedule could not provide an
	// entry for the order at all.
	ErrFeeConfigMissing = errors.New("fee config missing")

	// ErrFeeNotFound means the fee schedule has no entry for the network.
	ErrFeeNotFound = errors.New("fee not found for network")

	// ErrUnsupportedFeeType means the network entry lacks the order type.
	ErrUnsupportedFeeType = errors.New("unsupported fee type")

	// ErrNetworkError wraps transport failures from collaborators. Never
	// retried internally; retry policy belongs to the caller.
	ErrNetworkError = errors.New("network error")

	// ErrFulfillmentReverted means the on-chain call was submitted and
	// rejected by the contract. Terminal, never retried.
	ErrFulfillmentReverted = errors.New("fulfillment reverted on-chain")
)
