// Package campaign implements the per-campaign funding state machine and
// the factory that deploys and indexes campaign instances.
package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/authority"
	"github.com/sproutfund/protocol-core/internal/chain"
	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/registry"
	"github.com/sproutfund/protocol-core/internal/relay"
	"github.com/sproutfund/protocol-core/internal/vault"
)

// Config carries everything a campaign needs at construction. The shared
// services (authority, registry, vault, relay) are injected, never owned:
// every campaign instance sees the same admin set, token configs, and fee
// configuration.
type Config struct {
	Address      common.Address
	Creator      common.Address
	Token        common.Address
	Goal         *uint256.Int
	DurationDays uint64

	Authority *authority.Authority
	Registry  *registry.TokenRegistry
	Vault     *vault.Vault
	Relay     *relay.Relay
	Backend   chain.TokenBackend
	Clock     adapter.Clock
}

// Campaign is one crowdfunding instance. Lifecycle states are derived
// predicates over the ledger and logical time; nothing is ever destroyed.
// The contribution ledger invariant holds for every successful
// contribution sequence: the sum of per-address contributions equals
// totalRaised. Refunds zero only the refunded address's entry and leave
// totalRaised as the historical record of the failed raise.
type Campaign struct {
	mu sync.Mutex

	address common.Address
	id      domain.CampaignID
	creator common.Address
	token   common.Address
	goal    *uint256.Int

	startTime    time.Time
	endTime      time.Time
	durationDays uint64

	totalRaised       *uint256.Int
	contributions     map[common.Address]*uint256.Int
	isContributor     map[common.Address]bool
	refunded          map[common.Address]bool
	contributorsCount uint64
	hasClaimedFunds   bool
	adminOverride     bool

	auth     *authority.Authority
	registry *registry.TokenRegistry
	vault    *vault.Vault
	relay    *relay.Relay
	backend  chain.TokenBackend
	clock    adapter.Clock
}

// New validates the creation parameters and constructs a campaign whose
// funding window opens immediately. The campaign id is derived from the
// creation parameters and deployment time.
func New(cfg Config) (*Campaign, error) {
	if cfg.Creator == domain.ZeroAddress {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, cfg.Creator)
	}
	if cfg.Token == domain.ZeroAddress {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, cfg.Token)
	}
	if cfg.Address == domain.ZeroAddress {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, cfg.Address)
	}
	if cfg.Authority == nil || cfg.Vault == nil || cfg.Registry == nil {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, cfg.Address)
	}
	supported, err := cfg.Registry.IsTokenSupported(cfg.Token)
	if err != nil || !supported {
		return nil, domain.NewError(domain.ErrCodeTokenNotSupported, cfg.Token)
	}
	if domain.IsZeroAmount(cfg.Goal) {
		return nil, domain.NewAmountError(domain.ErrCodeInvalidGoal, cfg.Creator, cfg.Goal)
	}
	if cfg.DurationDays < domain.MinCampaignDurationDays || cfg.DurationDays > domain.MaxCampaignDurationDays {
		return nil, domain.NewAmountError(domain.ErrCodeInvalidDuration, cfg.Creator, uint256.NewInt(cfg.DurationDays))
	}

	startTime := cfg.Clock.Now()
	duration := time.Duration(cfg.DurationDays) * 24 * time.Hour

	return &Campaign{
		address:       cfg.Address,
		id:            domain.NewCampaignID(cfg.Creator, cfg.Token, cfg.Goal, cfg.DurationDays, startTime),
		creator:       cfg.Creator,
		token:         cfg.Token,
		goal:          new(uint256.Int).Set(cfg.Goal),
		startTime:     startTime,
		endTime:       startTime.Add(duration),
		durationDays:  cfg.DurationDays,
		totalRaised:   new(uint256.Int),
		contributions: make(map[common.Address]*uint256.Int),
		isContributor: make(map[common.Address]bool),
		refunded:      make(map[common.Address]bool),
		auth:          cfg.Authority,
		registry:      cfg.Registry,
		vault:         cfg.Vault,
		relay:         cfg.Relay,
		backend:       cfg.Backend,
		clock:         cfg.Clock,
	}, nil
}

// Contribute pulls amount of the campaign token from caller and forwards
// it through the vault into the lending pool. Reaching the goal exactly is
// enough to close the funding window on the same call, even mid-duration.
func (c *Campaign) Contribute(ctx context.Context, caller, token common.Address, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.adminOverride {
		return domain.NewError(domain.ErrCodeAdminOverrideActive, c.address)
	}
	if !c.isActiveLocked() {
		return domain.NewError(domain.ErrCodeCampaignNotActive, c.address)
	}
	if token != c.token {
		return domain.NewError(domain.ErrCodeNotTargetToken, token)
	}
	if domain.IsZeroAmount(amount) {
		return domain.NewAmountError(domain.ErrCodeInvalidAmount, caller, amount)
	}
	minimum, err := c.registry.GetMinContributionAmount(c.token)
	if err != nil {
		return err
	}
	if amount.Lt(minimum) {
		return domain.NewAmountError(domain.ErrCodeInvalidAmount, caller, amount)
	}

	// Bound checks happen before any external call so a failed call never
	// leaves partial state behind.
	newTotal := new(uint256.Int)
	if _, overflow := newTotal.AddOverflow(c.totalRaised, amount); overflow {
		return domain.NewAmountError(domain.ErrCodeOverflow, caller, amount)
	}

	erc20, err := c.backend.Token(c.token)
	if err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, c.token, err)
	}
	if err := erc20.TransferFrom(ctx, c.address, caller, c.address, amount); err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, caller, err)
	}
	if err := erc20.Approve(ctx, c.address, c.vault.Address(), amount); err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, c.vault.Address(), err)
	}
	if err := c.vault.Deposit(ctx, c.address, c.token, amount); err != nil {
		return err
	}

	entry, ok := c.contributions[caller]
	if !ok {
		entry = new(uint256.Int)
		c.contributions[caller] = entry
	}
	entry.Add(entry, amount)
	c.totalRaised.Set(newTotal)
	if !c.isContributor[caller] {
		c.isContributor[caller] = true
		c.contributorsCount++
	}

	if c.relay != nil {
		if c.totalRaised.Cmp(c.goal) >= 0 {
			_ = c.relay.EmitCampaignStatusChanged(ctx, c.address, c.id, domain.StatusActive, domain.StatusGoalReached, "goal reached")
		}
		_ = c.relay.EmitContribution(ctx, c.address, c.id, caller, amount)
	}
	return nil
}

// ClaimFunds lets the creator withdraw a successful campaign's principal
// plus its share of generated yield. The campaign first pushes its
// accumulated receipt balance to the vault, then asks the vault to
// withdraw, split, and disburse.
func (c *Campaign) ClaimFunds(ctx context.Context) error {
	return c.ClaimFundsFrom(ctx, c.creator)
}

// ClaimFundsFrom is ClaimFunds with an explicit caller, rejecting anyone
// but the campaign owner.
func (c *Campaign) ClaimFundsFrom(ctx context.Context, caller common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.creator {
		return domain.NewError(domain.ErrCodeNotCampaignOwner, caller)
	}
	if c.hasClaimedFunds {
		return domain.NewError(domain.ErrCodeAlreadyClaimed, c.address)
	}
	if !c.isSuccessfulLocked() {
		return domain.NewError(domain.ErrCodeGoalNotReached, c.address)
	}

	if err := c.pushReceiptBalance(ctx, nil); err != nil {
		return err
	}
	payout, err := c.vault.Withdraw(ctx, c.address, c.token, true, c.totalRaised)
	if err != nil {
		return err
	}

	erc20, err := c.backend.Token(c.token)
	if err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, c.token, err)
	}
	if err := erc20.Transfer(ctx, c.address, c.creator, payout); err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, c.creator, err)
	}

	c.hasClaimedFunds = true

	if c.relay != nil {
		_ = c.relay.EmitCampaignStatusChanged(ctx, c.address, c.id, domain.StatusGoalReached, domain.StatusClaimed, "funds claimed")
		_ = c.relay.EmitFundsClaimed(ctx, c.address, c.id, c.creator, payout)
	}
	return nil
}

// RequestRefund returns the caller's own principal after an unsuccessful
// campaign. Refunds never carry a yield share and each contributor can be
// refunded at most once.
func (c *Campaign) RequestRefund(ctx context.Context, caller common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clock.Now().Before(c.endTime) {
		return domain.NewError(domain.ErrCodeCampaignStillActive, c.address)
	}
	if c.isSuccessfulLocked() {
		return domain.NewError(domain.ErrCodeGoalReached, c.address)
	}
	if c.refunded[caller] {
		return domain.NewError(domain.ErrCodeAlreadyRefunded, caller)
	}
	contribution, ok := c.contributions[caller]
	if !ok || contribution.IsZero() {
		return domain.NewError(domain.ErrCodeNothingToRefund, caller)
	}

	principal := new(uint256.Int).Set(contribution)
	if err := c.pushReceiptBalance(ctx, principal); err != nil {
		return err
	}
	refund, err := c.vault.Withdraw(ctx, c.address, c.token, false, principal)
	if err != nil {
		return err
	}

	erc20, err := c.backend.Token(c.token)
	if err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, c.token, err)
	}
	if err := erc20.Transfer(ctx, c.address, caller, refund); err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, caller, err)
	}

	contribution.Clear()
	c.refunded[caller] = true

	if c.relay != nil {
		_ = c.relay.EmitRefundIssued(ctx, c.address, c.id, caller, refund)
	}
	return nil
}

// SetAdminOverride flips the manual halt flag. Admin-only; effective
// immediately for all subsequent contributions and activity checks. This
// is the only cancellation-like mechanism and it is not time-gated.
func (c *Campaign) SetAdminOverride(ctx context.Context, caller common.Address, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.auth.RequireAdmin(caller); err != nil {
		return err
	}

	oldStatus := c.statusLocked()
	c.adminOverride = active
	newStatus := c.statusLocked()

	if c.relay != nil {
		_ = c.relay.EmitAdminOverrideSet(ctx, c.address, c.id, caller, active)
		if oldStatus != newStatus {
			_ = c.relay.EmitCampaignStatusChanged(ctx, c.address, c.id, oldStatus, newStatus, "admin override")
		}
	}
	return nil
}

// ReceiveNative models a direct native-currency transfer to the campaign;
// it is always rejected. The campaign accepts only its designated token.
func (c *Campaign) ReceiveNative(from common.Address, amount *uint256.Int) error {
	return domain.NewAmountError(domain.ErrCodeNativeCurrencyNotAccepted, from, amount)
}

// pushReceiptBalance transfers the campaign's receipt-token holdings to
// the vault ahead of a withdrawal (push-then-pull sequencing). A nil
// amount pushes the full balance.
func (c *Campaign) pushReceiptBalance(ctx context.Context, amount *uint256.Int) error {
	receiptAddr, err := c.vault.GetReceiptTokenAddress(ctx, c.token)
	if err != nil {
		return err
	}
	receipt, err := c.backend.Token(receiptAddr)
	if err != nil {
		return domain.WrapError(domain.ErrCodePoolOperationFailed, receiptAddr, err)
	}
	if amount == nil {
		amount, err = receipt.BalanceOf(ctx, c.address)
		if err != nil {
			return domain.WrapError(domain.ErrCodePoolOperationFailed, receiptAddr, err)
		}
	}
	if amount.IsZero() {
		return nil
	}
	if err := receipt.Transfer(ctx, c.address, c.vault.Address(), amount); err != nil {
		return domain.WrapError(domain.ErrCodeTokenTransferFailed, c.vault.Address(), err)
	}
	return nil
}

// Status returns the derived lifecycle state.
func (c *Campaign) Status() domain.CampaignStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// IsCampaignActive reports whether contributions are currently accepted:
// false as soon as the window elapses, the goal is reached, or an admin
// override is active.
func (c *Campaign) IsCampaignActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isActiveLocked() && !c.adminOverride
}

// IsCampaignSuccessful reports whether the goal has been met.
func (c *Campaign) IsCampaignSuccessful() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSuccessfulLocked()
}

// TimeRemaining returns the time left in the funding window, zero once
// elapsed.
func (c *Campaign) TimeRemaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !now.Before(c.endTime) {
		return 0
	}
	return c.endTime.Sub(now)
}

// statusLocked derives the lifecycle state. An admin override with the
// goal unmet reports as ended-unsuccessful: the campaign was halted by the
// platform.
func (c *Campaign) statusLocked() domain.CampaignStatus {
	if c.hasClaimedFunds {
		return domain.StatusClaimed
	}
	if c.isSuccessfulLocked() {
		return domain.StatusGoalReached
	}
	if c.adminOverride || !c.clock.Now().Before(c.endTime) {
		return domain.StatusEndedUnsuccessful
	}
	return domain.StatusActive
}

func (c *Campaign) isActiveLocked() bool {
	return c.clock.Now().Before(c.endTime) && c.totalRaised.Lt(c.goal)
}

func (c *Campaign) isSuccessfulLocked() bool {
	return c.totalRaised.Cmp(c.goal) >= 0
}

// ID returns the content-derived campaign identifier.
func (c *Campaign) ID() domain.CampaignID {
	return c.id
}

// Address returns the campaign's identity at the token boundary.
func (c *Campaign) Address() common.Address {
	return c.address
}

// Creator returns the campaign owner.
func (c *Campaign) Creator() common.Address {
	return c.creator
}

// Token returns the designated funding token.
func (c *Campaign) Token() common.Address {
	return c.token
}

// Goal returns the funding goal in smallest units.
func (c *Campaign) Goal() *uint256.Int {
	return new(uint256.Int).Set(c.goal)
}

// StartTime returns when the funding window opened.
func (c *Campaign) StartTime() time.Time {
	return c.startTime
}

// EndTime returns when the funding window closes. It also satisfies the
// authority's grace-period interface.
func (c *Campaign) EndTime() time.Time {
	return c.endTime
}

// DurationDays returns the configured funding window length.
func (c *Campaign) DurationDays() uint64 {
	return c.durationDays
}

// TotalRaised returns the cumulative contributions in smallest units.
func (c *Campaign) TotalRaised() *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(uint256.Int).Set(c.totalRaised)
}

// ContributionOf returns caller's current contribution; zero after a
// refund.
func (c *Campaign) ContributionOf(addr common.Address) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.contributions[addr]; ok {
		return new(uint256.Int).Set(entry)
	}
	return new(uint256.Int)
}

// ContributorsCount returns the number of distinct contributors.
func (c *Campaign) ContributorsCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contributorsCount
}

// HasClaimedFunds reports whether the creator already claimed. The flag is
// monotonic: once true it never reverts.
func (c *Campaign) HasClaimedFunds() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasClaimedFunds
}

// IsAdminOverride reports whether the manual halt flag is active.
func (c *Campaign) IsAdminOverride() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adminOverride
}

// HasRefunded reports whether addr already received a refund.
func (c *Campaign) HasRefunded(addr common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refunded[addr]
}
