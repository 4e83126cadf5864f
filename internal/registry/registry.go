// Package registry implements the shared token registry: the per-token
// support flag, decimals, and minimum-contribution amount every campaign
// and the vault consult.
package registry

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/authority"
	"github.com/sproutfund/protocol-core/internal/chain"
	"github.com/sproutfund/protocol-core/internal/domain"
)

const module = "registry"

// TokenConfig holds the registered configuration of a token. A config only
// exists for tokens that passed the contract-existence and decimals probes
// at add time; absence of a config is a distinct condition from a disabled
// support flag.
type TokenConfig struct {
	IsSupported         bool
	MinimumContribution *uint256.Int
	Decimals            uint8
}

// TokenRegistry validates and tracks the tokens campaigns may be funded
// in. Registered tokens live in a dense backing slice plus a lookup index;
// removal swaps the last element into the removed slot and truncates, so
// enumeration order is not stable across removals.
type TokenRegistry struct {
	mu       sync.RWMutex
	auth     *authority.Authority
	backend  chain.TokenBackend
	configs  map[common.Address]*TokenConfig
	tokens   []common.Address
	position map[common.Address]int
	clock    adapter.Clock
	recorder domain.OperationRecorder
}

// New creates an empty token registry backed by the given chain backend.
func New(auth *authority.Authority, backend chain.TokenBackend, clock adapter.Clock, recorder domain.OperationRecorder) *TokenRegistry {
	return &TokenRegistry{
		auth:     auth,
		backend:  backend,
		configs:  make(map[common.Address]*TokenConfig),
		position: make(map[common.Address]int),
		clock:    clock,
		recorder: recorder,
	}
}

// AddToken registers a token after probing it for contract code and a
// decimals interface, converting minimumWholeTokens to the token's
// smallest unit. Admin-only.
func (r *TokenRegistry) AddToken(ctx context.Context, caller, token common.Address, minimumWholeTokens uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token == domain.ZeroAddress {
		return domain.NewError(domain.ErrCodeInvalidAddress, token)
	}
	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if _, ok := r.configs[token]; ok {
		return domain.NewError(domain.ErrCodeAlreadyRegistered, token)
	}

	hasCode, err := r.backend.HasCode(ctx, token)
	if err != nil {
		return domain.WrapError(domain.ErrCodeNotAContract, token, err)
	}
	if !hasCode {
		return domain.NewError(domain.ErrCodeNotAContract, token)
	}

	erc20, err := r.backend.Token(token)
	if err != nil {
		return domain.WrapError(domain.ErrCodeNotCompliant, token, err)
	}
	decimals, err := erc20.Decimals(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeNotCompliant, token, err)
	}

	minimum, err := toSmallestUnit(token, minimumWholeTokens, decimals)
	if err != nil {
		return err
	}

	r.configs[token] = &TokenConfig{
		IsSupported:         true,
		MinimumContribution: minimum,
		Decimals:            decimals,
	}
	r.position[token] = len(r.tokens)
	r.tokens = append(r.tokens, token)

	r.record(ctx, domain.OpTokenAdded, caller, token, minimum)
	return nil
}

// RemoveToken deletes a token's config entirely; a later re-add starts
// from a blank minimum. Admin-only.
func (r *TokenRegistry) RemoveToken(ctx context.Context, caller, token common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if _, ok := r.configs[token]; !ok {
		return domain.NewError(domain.ErrCodeNotRegistered, token)
	}

	// Swap-and-truncate removal: O(1) at the cost of enumeration order.
	pos := r.position[token]
	last := len(r.tokens) - 1
	if pos != last {
		moved := r.tokens[last]
		r.tokens[pos] = moved
		r.position[moved] = pos
	}
	r.tokens = r.tokens[:last]
	delete(r.position, token)
	delete(r.configs, token)

	r.record(ctx, domain.OpTokenRemoved, caller, token, nil)
	return nil
}

// EnableTokenSupport flips the support flag on. Admin-only; fails if the
// token is already enabled.
func (r *TokenRegistry) EnableTokenSupport(ctx context.Context, caller, token common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}
	cfg, ok := r.configs[token]
	if !ok {
		return domain.NewError(domain.ErrCodeNotRegistered, token)
	}
	if cfg.IsSupported {
		return domain.NewError(domain.ErrCodeAlreadyEnabled, token)
	}

	cfg.IsSupported = true
	r.record(ctx, domain.OpTokenEnabled, caller, token, nil)
	return nil
}

// DisableTokenSupport flips the support flag off without touching the rest
// of the config. Admin-only; fails if the token is already disabled.
func (r *TokenRegistry) DisableTokenSupport(ctx context.Context, caller, token common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}
	cfg, ok := r.configs[token]
	if !ok {
		return domain.NewError(domain.ErrCodeNotRegistered, token)
	}
	if !cfg.IsSupported {
		return domain.NewError(domain.ErrCodeAlreadyDisabled, token)
	}

	cfg.IsSupported = false
	r.record(ctx, domain.OpTokenDisabled, caller, token, nil)
	return nil
}

// UpdateMinimumContribution recomputes the smallest-unit minimum from a
// new whole-token value. Admin-only.
func (r *TokenRegistry) UpdateMinimumContribution(ctx context.Context, caller, token common.Address, newWholeTokens uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}
	cfg, ok := r.configs[token]
	if !ok {
		return domain.NewError(domain.ErrCodeNotRegistered, token)
	}

	minimum, err := toSmallestUnit(token, newWholeTokens, cfg.Decimals)
	if err != nil {
		return err
	}

	cfg.MinimumContribution = minimum
	r.record(ctx, domain.OpMinimumContributionUpdated, caller, token, minimum)
	return nil
}

// IsTokenSupported reports a registered token's support flag. A token with
// no config at all is a NotRegistered failure, not a false return:
// absence and "registered but disabled" are different observable states.
func (r *TokenRegistry) IsTokenSupported(token common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[token]
	if !ok {
		return false, domain.NewError(domain.ErrCodeNotRegistered, token)
	}
	return cfg.IsSupported, nil
}

// GetMinContributionAmount returns the smallest-unit minimum for a
// registered token.
func (r *TokenRegistry) GetMinContributionAmount(token common.Address) (*uint256.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[token]
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotRegistered, token)
	}
	return new(uint256.Int).Set(cfg.MinimumContribution), nil
}

// GetTokenDecimals returns the decimals recorded at registration time.
func (r *TokenRegistry) GetTokenDecimals(token common.Address) (uint8, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[token]
	if !ok {
		return 0, domain.NewError(domain.ErrCodeNotRegistered, token)
	}
	return cfg.Decimals, nil
}

// GetAllSupportedTokens returns the registered tokens whose support flag is
// on. Order is not stable across removals.
func (r *TokenRegistry) GetAllSupportedTokens() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	supported := make([]common.Address, 0, len(r.tokens))
	for _, token := range r.tokens {
		if cfg := r.configs[token]; cfg != nil && cfg.IsSupported {
			supported = append(supported, token)
		}
	}
	return supported
}

// toSmallestUnit converts a whole-token amount to the token's smallest
// unit, failing rather than wrapping when 10^decimals scaling overflows.
func toSmallestUnit(token common.Address, wholeTokens uint64, decimals uint8) (*uint256.Int, error) {
	amount := uint256.NewInt(wholeTokens)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < decimals; i++ {
		if _, overflow := amount.MulOverflow(amount, ten); overflow {
			return nil, domain.NewAmountError(domain.ErrCodeOverflow, token, uint256.NewInt(wholeTokens))
		}
	}
	return amount, nil
}

func (r *TokenRegistry) record(ctx context.Context, op domain.OperationType, actor, token common.Address, amount *uint256.Int) {
	if r.recorder == nil {
		return
	}
	r.recorder.RecordOperation(ctx, domain.NewOperationEvent(module, op, actor, token, domain.AmountString(amount), r.clock.Now()))
}
