// Package authority implements the shared admin-authorization service. One
// instance is injected into every other protocol component; no component
// keeps its own admin registry.
package authority

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/domain"
)

const module = "authority"

// EndTimer exposes a campaign's end time to the grace-period check without
// coupling the authority to the campaign package.
type EndTimer interface {
	EndTime() time.Time
}

// Authority is the owner + multi-admin registry with a configurable grace
// period. The deploying owner is always an admin and can never be removed
// while still owner.
type Authority struct {
	mu              sync.RWMutex
	owner           common.Address
	admins          map[common.Address]bool
	gracePeriodDays uint64
	clock           adapter.Clock
	recorder        domain.OperationRecorder
}

// New creates an Authority owned by owner. The owner is registered as the
// first admin. gracePeriodDays must be positive.
func New(owner common.Address, gracePeriodDays uint64, clock adapter.Clock, recorder domain.OperationRecorder) (*Authority, error) {
	if owner == domain.ZeroAddress {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, owner)
	}
	if gracePeriodDays == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalidGracePeriod, owner)
	}

	return &Authority{
		owner:           owner,
		admins:          map[common.Address]bool{owner: true},
		gracePeriodDays: gracePeriodDays,
		clock:           clock,
		recorder:        recorder,
	}, nil
}

// AddAdmin registers addr as an admin. The caller must already be an admin.
func (a *Authority) AddAdmin(ctx context.Context, caller, addr common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if addr == domain.ZeroAddress {
		return domain.NewError(domain.ErrCodeInvalidAddress, addr)
	}
	if !a.admins[caller] {
		return domain.NewError(domain.ErrCodeNotAuthorizedAdmin, caller)
	}
	if a.admins[addr] {
		return domain.NewError(domain.ErrCodeAlreadyAdmin, addr)
	}

	a.admins[addr] = true
	a.record(ctx, domain.OpAdminAdded, caller, addr)
	return nil
}

// RemoveAdmin removes addr from the admin registry. The owner cannot be
// removed.
func (a *Authority) RemoveAdmin(ctx context.Context, caller, addr common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.admins[caller] {
		return domain.NewError(domain.ErrCodeNotAuthorizedAdmin, caller)
	}
	if !a.admins[addr] {
		return domain.NewError(domain.ErrCodeNotAdmin, addr)
	}
	if addr == a.owner {
		return domain.NewError(domain.ErrCodeCannotRemoveOwner, addr)
	}

	delete(a.admins, addr)
	a.record(ctx, domain.OpAdminRemoved, caller, addr)
	return nil
}

// UpdateGracePeriod sets the admin-recovery waiting window. Owner-only;
// days must stay positive.
func (a *Authority) UpdateGracePeriod(ctx context.Context, caller common.Address, days uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.owner {
		return domain.NewError(domain.ErrCodeNotAuthorizedAdmin, caller)
	}
	if days == 0 {
		return domain.NewError(domain.ErrCodeInvalidGracePeriod, caller)
	}

	a.gracePeriodDays = days
	a.record(ctx, domain.OpGracePeriodUpdated, caller, caller)
	return nil
}

// SetRecorder attaches the operation recorder. The relay needs the
// authority for its admin checks, so it is attached here after both are
// constructed, before the node starts serving.
func (a *Authority) SetRecorder(recorder domain.OperationRecorder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorder = recorder
}

// IsAdmin reports whether addr is a registered admin.
func (a *Authority) IsAdmin(addr common.Address) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.admins[addr]
}

// RequireAdmin returns the uniform NotAuthorizedAdmin error when caller is
// not a registered admin. Every admin-only entrypoint across the protocol
// funnels through this check.
func (a *Authority) RequireAdmin(caller common.Address) error {
	if !a.IsAdmin(caller) {
		return domain.NewError(domain.ErrCodeNotAuthorizedAdmin, caller)
	}
	return nil
}

// Owner returns the deploying owner address.
func (a *Authority) Owner() common.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

// GracePeriodDays returns the configured grace period in days.
func (a *Authority) GracePeriodDays() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gracePeriodDays
}

// IsGracePeriodOver reports whether the grace period after the campaign's
// end time has elapsed, and the time remaining when it has not. Admin
// recovery actions on a stalled campaign are gated on it so contributors
// and the creator get a fair window to act first.
func (a *Authority) IsGracePeriodOver(campaign EndTimer) (bool, time.Duration) {
	a.mu.RLock()
	gracePeriod := time.Duration(a.gracePeriodDays) * 24 * time.Hour
	a.mu.RUnlock()

	deadline := campaign.EndTime().Add(gracePeriod)
	now := a.clock.Now()
	if now.Before(deadline) {
		return false, deadline.Sub(now)
	}
	return true, 0
}

func (a *Authority) record(ctx context.Context, op domain.OperationType, actor, subject common.Address) {
	if a.recorder == nil {
		return
	}
	a.recorder.RecordOperation(ctx, domain.NewOperationEvent(module, op, actor, subject, "", a.clock.Now()))
}
