// Package memory provides an in-process token ledger and lending pool.
// It is the settlement layer for local deployments and tests: tokens are
// plain balance maps with ERC20 allowance semantics, and the pool mints
// receipt tokens one-to-one against supplied liquidity.
package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sproutfund/protocol-core/internal/chain"
	"github.com/sproutfund/protocol-core/internal/domain"
)

// Backend implements chain.TokenBackend over in-process token ledgers.
type Backend struct {
	mu     sync.Mutex
	tokens map[common.Address]*Token
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{tokens: make(map[common.Address]*Token)}
}

// CreateToken registers a fresh token ledger at address. Registering the
// same address twice returns the existing ledger.
func (b *Backend) CreateToken(address common.Address, decimals uint8) *Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.tokens[address]; ok {
		return t
	}
	t := &Token{
		address:    address,
		decimals:   decimals,
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
	b.tokens[address] = t
	return t
}

// HasCode reports whether a token ledger exists at address.
func (b *Backend) HasCode(ctx context.Context, address common.Address) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.tokens[address]
	return ok, nil
}

// Token returns the ledger at address.
func (b *Backend) Token(address common.Address) (chain.ERC20, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tokens[address]
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotAContract, address)
	}
	return t, nil
}

// Token is one in-process ERC20 ledger.
type Token struct {
	mu         sync.Mutex
	address    common.Address
	decimals   uint8
	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
}

// Address returns the ledger's address.
func (t *Token) Address() common.Address {
	return t.address
}

// Mint credits amount to addr out of thin air.
func (t *Token) Mint(addr common.Address, amount *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(addr, amount)
}

// Burn debits amount from addr, clamping at zero.
func (t *Token) Burn(addr common.Address, amount *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bal, ok := t.balances[addr]
	if !ok {
		return
	}
	if bal.Lt(amount) {
		bal.Clear()
		return
	}
	bal.Sub(bal, amount)
}

// BalanceOf returns owner's balance.
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if bal, ok := t.balances[owner]; ok {
		return new(uint256.Int).Set(bal), nil
	}
	return new(uint256.Int), nil
}

// Decimals returns the ledger's decimal places.
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	return t.decimals, nil
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

// TransferFrom moves amount from from to to on spender's allowance.
// A transfer by the balance owner itself needs no allowance.
func (t *Token) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if spender != from {
		if err := t.spendAllowance(from, spender, amount); err != nil {
			return err
		}
	}
	return t.move(from, to, amount)
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*uint256.Int)
	}
	t.allowances[owner][spender] = new(uint256.Int).Set(amount)
	return nil
}

func (t *Token) move(from, to common.Address, amount *uint256.Int) error {
	bal, ok := t.balances[from]
	if !ok || bal.Lt(amount) {
		return domain.NewAmountError(domain.ErrCodeTokenTransferFailed, from, amount)
	}
	bal.Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *Token) credit(addr common.Address, amount *uint256.Int) {
	bal, ok := t.balances[addr]
	if !ok {
		bal = new(uint256.Int)
		t.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

// spendAllowance decrements spender's allowance; a max-uint256 allowance
// is treated as infinite and never decremented.
func (t *Token) spendAllowance(owner, spender common.Address, amount *uint256.Int) error {
	allowance := t.allowances[owner][spender]
	if allowance == nil || allowance.Lt(amount) {
		return domain.NewAmountError(domain.ErrCodeTokenTransferFailed, spender, amount)
	}
	if !allowance.Eq(maxUint256) {
		allowance.Sub(allowance, amount)
	}
	return nil
}

var maxUint256 = new(uint256.Int).Not(new(uint256.Int))
