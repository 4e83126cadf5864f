package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/sproutfund/protocol-core/internal/chain"
	"github.com/sproutfund/protocol-core/internal/domain"
)

// LendingPool implements chain.LendingPool over the in-process backend.
// Supplied liquidity moves from the bound supplier into the pool address
// and receipt tokens are minted one-to-one to the beneficiary; withdrawal
// burns the supplier's receipts and releases liquidity to the recipient.
// Yield is simulated explicitly through AccrueYield.
type LendingPool struct {
	mu       sync.Mutex
	backend  *Backend
	address  common.Address
	supplier common.Address
	nonce    uint64
	reserves map[common.Address]common.Address
}

// NewLendingPool creates a pool at address over backend.
func NewLendingPool(backend *Backend, address common.Address) *LendingPool {
	return &LendingPool{
		backend:  backend,
		address:  address,
		reserves: make(map[common.Address]common.Address),
	}
}

// Address returns the pool's identity.
func (p *LendingPool) Address() common.Address {
	return p.address
}

// BindSupplier sets the single account whose balance Supply draws from and
// whose receipts Withdraw burns. In this system that is always the vault.
func (p *LendingPool) BindSupplier(addr common.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.supplier = addr
}

// CreateReserve opens a reserve for asset, deriving and registering its
// receipt token. The receipt mirrors the asset's decimal places.
func (p *LendingPool) CreateReserve(ctx context.Context, asset common.Address) (common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if receipt, ok := p.reserves[asset]; ok {
		return receipt, nil
	}

	erc20, err := p.backend.Token(asset)
	if err != nil {
		return domain.ZeroAddress, err
	}
	decimals, err := erc20.Decimals(ctx)
	if err != nil {
		return domain.ZeroAddress, err
	}

	receipt := crypto.CreateAddress(p.address, p.nonce)
	p.nonce++
	p.backend.CreateToken(receipt, decimals)
	p.reserves[asset] = receipt
	return receipt, nil
}

// Supply moves amount of asset from the bound supplier into the pool and
// mints the same amount of receipt tokens to onBehalfOf.
func (p *LendingPool) Supply(ctx context.Context, asset common.Address, amount *uint256.Int, onBehalfOf common.Address, referralCode uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	receiptAddr, ok := p.reserves[asset]
	if !ok {
		return domain.NewError(domain.ErrCodePoolOperationFailed, asset)
	}

	erc20, err := p.backend.Token(asset)
	if err != nil {
		return err
	}
	if err := erc20.Transfer(ctx, p.supplier, p.address, amount); err != nil {
		return domain.WrapError(domain.ErrCodePoolOperationFailed, p.supplier, err)
	}

	receipt, err := p.receiptToken(receiptAddr)
	if err != nil {
		return err
	}
	receipt.Mint(onBehalfOf, amount)
	return nil
}

// Withdraw burns amount of the supplier's receipt tokens and releases the
// same amount of asset from the pool to to. It returns the amount moved.
func (p *LendingPool) Withdraw(ctx context.Context, asset common.Address, amount *uint256.Int, to common.Address) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	receiptAddr, ok := p.reserves[asset]
	if !ok {
		return nil, domain.NewError(domain.ErrCodePoolOperationFailed, asset)
	}
	receipt, err := p.receiptToken(receiptAddr)
	if err != nil {
		return nil, err
	}

	held, err := receipt.BalanceOf(ctx, p.supplier)
	if err != nil {
		return nil, err
	}
	if held.Lt(amount) {
		return nil, domain.NewAmountError(domain.ErrCodePoolOperationFailed, p.supplier, amount)
	}
	receipt.Burn(p.supplier, amount)

	erc20, err := p.backend.Token(asset)
	if err != nil {
		return nil, err
	}
	if err := erc20.Transfer(ctx, p.address, to, amount); err != nil {
		return nil, domain.WrapError(domain.ErrCodePoolOperationFailed, p.address, err)
	}
	return new(uint256.Int).Set(amount), nil
}

// GetReserveData returns the reserve metadata for asset.
func (p *LendingPool) GetReserveData(ctx context.Context, asset common.Address) (*chain.ReserveData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	receipt, ok := p.reserves[asset]
	if !ok {
		return nil, domain.NewError(domain.ErrCodePoolOperationFailed, asset)
	}
	return &chain.ReserveData{ReceiptTokenAddress: receipt}, nil
}

// AccrueYield simulates interest: it mints amount of receipt tokens to
// holder and backs them with freshly minted asset liquidity in the pool.
func (p *LendingPool) AccrueYield(ctx context.Context, asset, holder common.Address, amount *uint256.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	receiptAddr, ok := p.reserves[asset]
	if !ok {
		return domain.NewError(domain.ErrCodePoolOperationFailed, asset)
	}
	receipt, err := p.receiptToken(receiptAddr)
	if err != nil {
		return err
	}
	underlying, err := p.backend.Token(asset)
	if err != nil {
		return err
	}

	receipt.Mint(holder, amount)
	underlying.(*Token).Mint(p.address, amount)
	return nil
}

func (p *LendingPool) receiptToken(addr common.Address) (*Token, error) {
	erc20, err := p.backend.Token(addr)
	if err != nil {
		return nil, err
	}
	return erc20.(*Token), nil
}
