// Package vault wraps the external lending-pool protocol: it tracks
// per-(token, depositor) deposited balances, performs pool deposits and
// withdrawals, and routes the fee split on withdrawal.
package vault

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/chain"
	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/feesplit"
	"github.com/sproutfund/protocol-core/internal/logger"
	"github.com/sproutfund/protocol-core/internal/registry"
)

// Vault is the yield-protocol integration ledger. Each campaign instance
// acts as one depositor identity; the ledger entry for a (token,
// depositor) pair equals the cumulative net of deposits minus withdrawals
// and is mutated only by Deposit and Withdraw.
type Vault struct {
	mu       sync.Mutex
	address  common.Address
	registry *registry.TokenRegistry
	splitter *feesplit.Splitter
	pool     chain.LendingPool
	backend  chain.TokenBackend
	ledger   map[common.Address]map[common.Address]*uint256.Int
	clock    adapter.Clock
	recorder domain.FundsRecorder
}

// New creates a vault with the given identity at the token boundary.
// Fund-movement records go through the recorder's authorization gate;
// depositor identities are campaign addresses.
func New(address common.Address, reg *registry.TokenRegistry, splitter *feesplit.Splitter, pool chain.LendingPool, backend chain.TokenBackend, clock adapter.Clock, recorder domain.FundsRecorder) (*Vault, error) {
	if address == domain.ZeroAddress {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, address)
	}

	return &Vault{
		address:  address,
		registry: reg,
		splitter: splitter,
		pool:     pool,
		backend:  backend,
		ledger:   make(map[common.Address]map[common.Address]*uint256.Int),
		clock:    clock,
		recorder: recorder,
	}, nil
}

// Address returns the vault's identity at the token boundary.
func (v *Vault) Address() common.Address {
	return v.address
}

// Deposit pulls amount of token from caller and supplies it to the lending
// pool on the caller's behalf. The yield-bearing receipt token is minted
// directly to the caller, not to the vault; the caller pushes it back
// before withdrawing. Ledger commits happen only after both external calls
// succeed, so a failed call leaves the ledger untouched.
func (v *Vault) Deposit(ctx context.Context, caller, token common.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if domain.IsZeroAmount(amount) {
		return domain.NewAmountError(domain.ErrCodeZeroAmount, caller, amount)
	}
	supported, err := v.registry.IsTokenSupported(token)
	if err != nil {
		return err
	}
	if !supported {
		return domain.NewError(domain.ErrCodeTokenNotSupported, token)
	}

	// Bound the ledger commit before any external call so a rejected
	// deposit never moves funds.
	newEntry := new(uint256.Int)
	if deposits, ok := v.ledger[token]; ok {
		if entry, ok := deposits[caller]; ok {
			newEntry.Set(entry)
		}
	}
	if _, overflow := newEntry.AddOverflow(newEntry, amount); overflow {
		return domain.NewAmountError(domain.ErrCodeOverflow, caller, amount)
	}

	erc20, err := v.backend.Token(token)
	if err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, token, err)
	}
	if err := erc20.TransferFrom(ctx, v.address, caller, v.address, amount); err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, caller, err)
	}
	if err := v.pool.Supply(ctx, token, amount, caller, 0); err != nil {
		return domain.WrapError(domain.ErrCodePoolOperationFailed, token, err)
	}

	deposits, ok := v.ledger[token]
	if !ok {
		deposits = make(map[common.Address]*uint256.Int)
		v.ledger[token] = deposits
	}
	deposits[caller] = newEntry

	v.record(ctx, domain.OpVaultDeposit, caller, token, amount)
	return nil
}

// Withdraw converts pool holdings back to the underlying asset and
// disburses them to caller. On a successful outcome the caller is expected
// to have already pushed its accumulated receipt balance to the vault; the
// vault withdraws the full balance it holds, treats everything above
// originalPrincipal as yield, and splits that yield with the treasury. On
// an unsuccessful outcome exactly originalPrincipal is withdrawn and
// returned with no yield share. The disbursed amount is returned.
func (v *Vault) Withdraw(ctx context.Context, caller, token common.Address, isSuccessfulOutcome bool, originalPrincipal *uint256.Int) (*uint256.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if domain.IsZeroAmount(originalPrincipal) {
		return nil, domain.NewAmountError(domain.ErrCodeZeroAmount, caller, originalPrincipal)
	}
	supported, err := v.registry.IsTokenSupported(token)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, domain.NewError(domain.ErrCodeTokenNotSupported, token)
	}

	erc20, err := v.backend.Token(token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeTokenTransferFailed, token, err)
	}

	if !isSuccessfulOutcome {
		return v.withdrawPrincipal(ctx, erc20, caller, token, originalPrincipal)
	}
	return v.withdrawWithYield(ctx, erc20, caller, token, originalPrincipal)
}

// withdrawWithYield redeems the vault's entire receipt balance for token,
// splits the yield above principal, and clears the caller's ledger entry.
func (v *Vault) withdrawWithYield(ctx context.Context, erc20 chain.ERC20, caller, token common.Address, principal *uint256.Int) (*uint256.Int, error) {
	reserve, err := v.pool.GetReserveData(ctx, token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePoolOperationFailed, token, err)
	}
	receipt, err := v.backend.Token(reserve.ReceiptTokenAddress)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePoolOperationFailed, reserve.ReceiptTokenAddress, err)
	}
	balance, err := receipt.BalanceOf(ctx, v.address)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePoolOperationFailed, reserve.ReceiptTokenAddress, err)
	}
	if balance.IsZero() {
		return nil, domain.NewAmountError(domain.ErrCodeZeroAmount, caller, balance)
	}

	withdrawn, err := v.pool.Withdraw(ctx, token, balance, v.address)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePoolOperationFailed, token, err)
	}

	payout := new(uint256.Int).Set(withdrawn)
	fee := new(uint256.Int)
	if withdrawn.Gt(principal) {
		yield := new(uint256.Int).Sub(withdrawn, principal)
		primary, feeShare, err := v.splitter.CalculateShares(yield)
		if err != nil {
			return nil, err
		}
		payout = new(uint256.Int).Add(principal, primary)
		fee = feeShare
	}

	if err := erc20.Transfer(ctx, v.address, caller, payout); err != nil {
		return nil, domain.WrapError(domain.ErrCodeTokenTransferFailed, caller, err)
	}
	if !fee.IsZero() {
		if err := erc20.Transfer(ctx, v.address, v.splitter.Treasury(), fee); err != nil {
			return nil, domain.WrapError(domain.ErrCodeTokenTransferFailed, v.splitter.Treasury(), err)
		}
	}

	if deposits, ok := v.ledger[token]; ok {
		delete(deposits, caller)
	}

	v.record(ctx, domain.OpVaultWithdraw, caller, token, payout)
	return payout, nil
}

// withdrawPrincipal redeems exactly principal and decrements the caller's
// ledger entry; refunds never carry a yield share.
func (v *Vault) withdrawPrincipal(ctx context.Context, erc20 chain.ERC20, caller, token common.Address, principal *uint256.Int) (*uint256.Int, error) {
	withdrawn, err := v.pool.Withdraw(ctx, token, principal, v.address)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePoolOperationFailed, token, err)
	}
	if err := erc20.Transfer(ctx, v.address, caller, withdrawn); err != nil {
		return nil, domain.WrapError(domain.ErrCodeTokenTransferFailed, caller, err)
	}

	if deposits, ok := v.ledger[token]; ok {
		if entry, ok := deposits[caller]; ok {
			if entry.Lt(principal) {
				entry.Clear()
			} else {
				entry.Sub(entry, principal)
			}
			if entry.IsZero() {
				delete(deposits, caller)
			}
		}
	}

	v.record(ctx, domain.OpVaultWithdraw, caller, token, withdrawn)
	return withdrawn, nil
}

// GetReceiptTokenAddress looks up the yield-bearing receipt token the pool
// mints for token.
func (v *Vault) GetReceiptTokenAddress(ctx context.Context, token common.Address) (common.Address, error) {
	reserve, err := v.pool.GetReserveData(ctx, token)
	if err != nil {
		return domain.ZeroAddress, domain.WrapError(domain.ErrCodePoolOperationFailed, token, err)
	}
	return reserve.ReceiptTokenAddress, nil
}

// GetDepositedAmount returns the ledger entry for a (token, depositor)
// pair; zero when no entry exists.
func (v *Vault) GetDepositedAmount(token, depositor common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if deposits, ok := v.ledger[token]; ok {
		if entry, ok := deposits[depositor]; ok {
			return new(uint256.Int).Set(entry)
		}
	}
	return new(uint256.Int)
}

// record emits a fund-movement record on behalf of the calling campaign.
// Emission failures are logged and swallowed; the funds already moved.
func (v *Vault) record(ctx context.Context, op domain.OperationType, caller, token common.Address, amount *uint256.Int) {
	if v.recorder == nil {
		return
	}
	if err := v.recorder.EmitFundsOperation(ctx, caller, op, token, amount); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("token", token.Hex()), zap.String("caller", caller.Hex()))
	}
}
