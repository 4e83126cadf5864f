// Package feesplit implements the basis-point yield split between campaign
// creators and the platform treasury.
package feesplit

import (
	"context"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/authority"
	"github.com/sproutfund/protocol-core/internal/domain"
)

const module = "feesplit"

var bpsDenominator = uint256.NewInt(domain.BasisPointsDenominator)

// Splitter holds the platform fee share (basis points, hard-capped at 500)
// and the treasury address, and performs the conservation-preserving split.
type Splitter struct {
	mu       sync.RWMutex
	auth     *authority.Authority
	shareBps uint16
	treasury common.Address
	clock    adapter.Clock
	recorder domain.OperationRecorder
}

// New creates a splitter with the initial fee share and treasury.
func New(auth *authority.Authority, shareBps uint64, treasury common.Address, clock adapter.Clock, recorder domain.OperationRecorder) (*Splitter, error) {
	if treasury == domain.ZeroAddress {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, treasury)
	}
	if shareBps > math.MaxUint16 {
		return nil, domain.NewAmountError(domain.ErrCodeInvalidShare, treasury, uint256.NewInt(shareBps))
	}
	if shareBps > domain.MaxFeeShareBps {
		return nil, domain.NewAmountError(domain.ErrCodeExceedsMaximum, treasury, uint256.NewInt(shareBps))
	}

	return &Splitter{
		auth:     auth,
		shareBps: uint16(shareBps),
		treasury: treasury,
		clock:    clock,
		recorder: recorder,
	}, nil
}

// CalculateShares divides total into the primary share and the platform
// fee share. primary + fee == total holds exactly for every
// non-overflowing input; the multiplication bound is checked up front and
// never allowed to wrap.
func (s *Splitter) CalculateShares(total *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	s.mu.RLock()
	shareBps := s.shareBps
	s.mu.RUnlock()

	if total == nil {
		total = new(uint256.Int)
	}
	if shareBps == 0 {
		return new(uint256.Int).Set(total), new(uint256.Int), nil
	}

	product := new(uint256.Int)
	if _, overflow := product.MulOverflow(total, uint256.NewInt(uint64(shareBps))); overflow {
		return nil, nil, domain.NewAmountError(domain.ErrCodeOverflow, s.Treasury(), total)
	}

	fee := product.Div(product, bpsDenominator)
	primary := new(uint256.Int).Sub(total, fee)
	return primary, fee, nil
}

// UpdateFeeShare sets a new platform fee share. Admin-only; rejects shares
// that cannot fit the reserved width or exceed the 5% cap.
func (s *Splitter) UpdateFeeShare(ctx context.Context, caller common.Address, newShareBps uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if newShareBps > math.MaxUint16 {
		return domain.NewAmountError(domain.ErrCodeInvalidShare, caller, uint256.NewInt(newShareBps))
	}
	if newShareBps > domain.MaxFeeShareBps {
		return domain.NewAmountError(domain.ErrCodeExceedsMaximum, caller, uint256.NewInt(newShareBps))
	}

	s.shareBps = uint16(newShareBps)
	s.record(ctx, domain.OpFeeShareUpdated, caller, s.treasury, uint256.NewInt(newShareBps))
	return nil
}

// UpdateTreasury sets a new treasury address. Admin-only; non-zero.
func (s *Splitter) UpdateTreasury(ctx context.Context, caller, treasury common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if treasury == domain.ZeroAddress {
		return domain.NewError(domain.ErrCodeInvalidAddress, treasury)
	}
	if err := s.auth.RequireAdmin(caller); err != nil {
		return err
	}

	s.treasury = treasury
	s.record(ctx, domain.OpTreasuryUpdated, caller, treasury, nil)
	return nil
}

// FeeShareBps returns the current platform fee share in basis points.
func (s *Splitter) FeeShareBps() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shareBps
}

// Treasury returns the current treasury address.
func (s *Splitter) Treasury() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treasury
}

func (s *Splitter) record(ctx context.Context, op domain.OperationType, actor, subject common.Address, amount *uint256.Int) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordOperation(ctx, domain.NewOperationEvent(module, op, actor, subject, domain.AmountString(amount), s.clock.Now()))
}
