package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ERC20 defines the fungible-token operations the protocol consumes. Actor
// addresses are explicit parameters: the production binding authenticates
// them via transaction options, while in-process tests assert on them
// directly.
//
//go:generate mockgen -source=erc20.go -destination=../mocks/erc20.go -package=mocks -mock_names=ERC20=MockERC20,TokenBackend=MockTokenBackend
type ERC20 interface {
	// BalanceOf returns the token balance of owner
	BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error)

	// Transfer moves amount from the from account to the to account
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error

	// TransferFrom moves amount from the from account to the to account using
	// spender's allowance
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error

	// Approve sets spender's allowance over owner's tokens
	Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error

	// Decimals returns the token's decimal places
	Decimals(ctx context.Context) (uint8, error)
}

// TokenBackend resolves token addresses to live ERC20 clients and answers
// contract-existence probes. The token registry uses it for its
// registration-time compliance checks.
type TokenBackend interface {
	// HasCode reports whether the address hosts contract code
	HasCode(ctx context.Context, address common.Address) (bool, error)

	// Token returns an ERC20 client bound to the given address
	Token(address common.Address) (ERC20, error)
}
