package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ReserveData is the subset of the lending pool's reserve information the
// protocol reads: the address of the yield-bearing receipt token minted
// against deposits of an asset.
type ReserveData struct {
	ReceiptTokenAddress common.Address
}

// LendingPool defines the external yield-protocol operations the vault
// depends on. The pool is never reimplemented here; only its documented
// semantics are assumed: the receipt balance grows over time and is 1:1
// redeemable plus accrued interest.
//
//go:generate mockgen -source=lendingpool.go -destination=../mocks/lendingpool.go -package=mocks -mock_names=LendingPool=MockLendingPool
type LendingPool interface {
	// Supply deposits amount of asset into the pool; the receipt token is
	// minted to onBehalfOf
	Supply(ctx context.Context, asset common.Address, amount *uint256.Int, onBehalfOf common.Address, referralCode uint16) error

	// Withdraw redeems amount of asset from the pool to the given recipient
	// and returns the amount actually withdrawn
	Withdraw(ctx context.Context, asset common.Address, amount *uint256.Int, to common.Address) (*uint256.Int, error)

	// GetReserveData returns the pool's reserve information for asset
	GetReserveData(ctx context.Context, asset common.Address) (*ReserveData, error)
}
