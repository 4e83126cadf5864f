// Package relay implements the authorization-gated event emission hub.
// Off-chain consumers watch one hub instead of every campaign instance:
// every campaign event is re-emitted here annotated with the emitting
// campaign's address, journaled, and fanned out to the configured sinks.
package relay

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/authority"
	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/logger"
	"github.com/sproutfund/protocol-core/internal/messaging"
	"github.com/sproutfund/protocol-core/internal/store"
	"github.com/sproutfund/protocol-core/internal/store/schema"
)

// Relay is the event hub. Factories are authorized by admins; campaigns
// become authorized only through a currently-authorized factory. Emission
// entrypoints reject callers outside the authorized campaign set.
type Relay struct {
	mu        sync.RWMutex
	auth      *authority.Authority
	factories map[common.Address]bool
	campaigns map[common.Address]bool
	sinks     []messaging.Publisher
	journal   store.Store
	json      adapter.JSON
	clock     adapter.Clock
}

// New creates a relay. journal and sinks may be nil/empty; emissions then
// only reach the log.
func New(auth *authority.Authority, journal store.Store, json adapter.JSON, clock adapter.Clock, sinks ...messaging.Publisher) *Relay {
	return &Relay{
		auth:      auth,
		factories: make(map[common.Address]bool),
		campaigns: make(map[common.Address]bool),
		sinks:     sinks,
		journal:   journal,
		json:      json,
		clock:     clock,
	}
}

// AuthorizeFactory lets factory register the campaigns it deploys.
// Admin-only.
func (r *Relay) AuthorizeFactory(ctx context.Context, caller, factory common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == domain.ZeroAddress {
		return domain.NewError(domain.ErrCodeInvalidAddress, factory)
	}
	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}

	r.factories[factory] = true
	r.emit(ctx, domain.NewOperationEvent("relay", domain.OpFactoryAuthorized, caller, factory, "", r.clock.Now()))
	return nil
}

// DeauthorizeFactory revokes a factory. Admin-only.
func (r *Relay) DeauthorizeFactory(ctx context.Context, caller, factory common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if !r.factories[factory] {
		return domain.NewError(domain.ErrCodeFactoryNotFound, factory)
	}

	delete(r.factories, factory)
	r.emit(ctx, domain.NewOperationEvent("relay", domain.OpFactoryDeauthorized, caller, factory, "", r.clock.Now()))
	return nil
}

// AuthorizeCampaignFromFactory registers a freshly deployed campaign.
// Callable only by an already-authorized factory; this is the only path
// into the authorized campaign set.
func (r *Relay) AuthorizeCampaignFromFactory(ctx context.Context, callerFactory, campaign common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if campaign == domain.ZeroAddress {
		return domain.NewError(domain.ErrCodeInvalidAddress, campaign)
	}
	if !r.factories[callerFactory] {
		return domain.NewError(domain.ErrCodeFactoryNotAuthorized, callerFactory)
	}

	r.campaigns[campaign] = true
	r.emit(ctx, domain.NewOperationEvent("relay", domain.OpCampaignAuthorized, callerFactory, campaign, "", r.clock.Now()))
	return nil
}

// DeauthorizeCampaign revokes a campaign's emission rights. Admin-only.
func (r *Relay) DeauthorizeCampaign(ctx context.Context, caller, campaign common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if !r.campaigns[campaign] {
		return domain.NewError(domain.ErrCodeCampaignNotFound, campaign)
	}

	delete(r.campaigns, campaign)
	r.emit(ctx, domain.NewOperationEvent("relay", domain.OpCampaignDeauthorized, caller, campaign, "", r.clock.Now()))
	return nil
}

// IsFactoryAuthorized reports whether factory may register campaigns.
func (r *Relay) IsFactoryAuthorized(factory common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[factory]
}

// IsCampaignAuthorized reports whether campaign may emit events.
func (r *Relay) IsCampaignAuthorized(campaign common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.campaigns[campaign]
}

// EmitContribution re-emits a contribution from an authorized campaign.
func (r *Relay) EmitContribution(ctx context.Context, campaign common.Address, campaignID domain.CampaignID, contributor common.Address, amount *uint256.Int) error {
	return r.emitFromCampaign(ctx, campaign, &domain.Event{
		Type:       domain.EventTypeContribution,
		CampaignID: campaignID,
		Actor:      contributor.Hex(),
		Amount:     domain.AmountString(amount),
	})
}

// EmitFundsClaimed re-emits a successful claim from an authorized campaign.
func (r *Relay) EmitFundsClaimed(ctx context.Context, campaign common.Address, campaignID domain.CampaignID, owner common.Address, amount *uint256.Int) error {
	return r.emitFromCampaign(ctx, campaign, &domain.Event{
		Type:       domain.EventTypeFundsClaimed,
		CampaignID: campaignID,
		Actor:      owner.Hex(),
		Amount:     domain.AmountString(amount),
	})
}

// EmitRefundIssued re-emits a refund from an authorized campaign.
func (r *Relay) EmitRefundIssued(ctx context.Context, campaign common.Address, campaignID domain.CampaignID, contributor common.Address, amount *uint256.Int) error {
	return r.emitFromCampaign(ctx, campaign, &domain.Event{
		Type:       domain.EventTypeRefundIssued,
		CampaignID: campaignID,
		Actor:      contributor.Hex(),
		Amount:     domain.AmountString(amount),
	})
}

// EmitCampaignStatusChanged re-emits a status transition from an
// authorized campaign.
func (r *Relay) EmitCampaignStatusChanged(ctx context.Context, campaign common.Address, campaignID domain.CampaignID, oldStatus, newStatus domain.CampaignStatus, reason string) error {
	return r.emitFromCampaign(ctx, campaign, &domain.Event{
		Type:       domain.EventTypeCampaignStatusChanged,
		CampaignID: campaignID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Reason:     reason,
	})
}

// EmitAdminOverrideSet re-emits an admin override flip from an authorized
// campaign.
func (r *Relay) EmitAdminOverrideSet(ctx context.Context, campaign common.Address, campaignID domain.CampaignID, admin common.Address, active bool) error {
	return r.emitFromCampaign(ctx, campaign, &domain.Event{
		Type:           domain.EventTypeAdminOverrideSet,
		CampaignID:     campaignID,
		Actor:          admin.Hex(),
		OverrideActive: active,
	})
}

// EmitCampaignCreated records a factory deployment. Callable only by an
// authorized factory.
func (r *Relay) EmitCampaignCreated(ctx context.Context, callerFactory, campaign, creator common.Address, campaignID domain.CampaignID) error {
	r.mu.RLock()
	authorized := r.factories[callerFactory]
	r.mu.RUnlock()
	if !authorized {
		return domain.NewError(domain.ErrCodeFactoryNotAuthorized, callerFactory)
	}

	event := &domain.Event{
		Type:            domain.EventTypeCampaignCreated,
		CampaignID:      campaignID,
		CampaignAddress: campaign.Hex(),
		Actor:           creator.Hex(),
		Timestamp:       r.clock.Now(),
	}
	r.emit(ctx, event)
	return nil
}

// EmitFundsOperation records a vault fund movement on behalf of an
// authorized campaign. Fund movements are campaign-initiated, so unlike
// the module records below they pass through the authorization gate.
func (r *Relay) EmitFundsOperation(ctx context.Context, campaign common.Address, op domain.OperationType, token common.Address, amount *uint256.Int) error {
	return r.emitFromCampaign(ctx, campaign, &domain.Event{
		Type:      domain.EventTypeOperation,
		Module:    "vault",
		Operation: op,
		Actor:     campaign.Hex(),
		Token:     token.Hex(),
		Amount:    domain.AmountString(amount),
	})
}

// RecordOperation forwards a module operation record through the hub.
// Module services are trusted in-process callers, so no authorization gate
// applies here.
func (r *Relay) RecordOperation(ctx context.Context, event *domain.Event) {
	r.emit(ctx, event)
}

// emitFromCampaign gates an emission on campaign authorization, stamps the
// campaign address and logical time, and fans out.
func (r *Relay) emitFromCampaign(ctx context.Context, campaign common.Address, event *domain.Event) error {
	r.mu.RLock()
	authorized := r.campaigns[campaign]
	r.mu.RUnlock()
	if !authorized {
		return domain.NewError(domain.ErrCodeCampaignNotAuthorized, campaign)
	}

	event.CampaignAddress = campaign.Hex()
	event.Timestamp = r.clock.Now()
	r.emit(ctx, event)
	return nil
}

// emit fans an event out to the log, the journal, and every sink. Sink
// failures are logged and swallowed: the emission hub must never unwind a
// committed protocol operation.
func (r *Relay) emit(ctx context.Context, event *domain.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.clock.Now()
	}

	logger.DebugCtx(ctx, "relaying protocol event",
		zap.String("type", string(event.Type)),
		zap.String("campaign", event.CampaignAddress),
		zap.String("actor", event.Actor),
		zap.String("amount", event.Amount))

	if r.journal != nil {
		if err := r.journal.InsertOperationRecord(ctx, r.toRecord(event)); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("type", string(event.Type)))
		}
	}

	for _, sink := range r.sinks {
		if err := sink.PublishEvent(ctx, event); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("type", string(event.Type)))
		}
	}
}

// toRecord flattens an event into its journal row.
func (r *Relay) toRecord(event *domain.Event) *schema.OperationRecord {
	record := &schema.OperationRecord{
		ID:        uuid.NewString(),
		EventType: string(event.Type),
		EmittedAt: event.Timestamp,
	}
	if event.CampaignID != (domain.CampaignID{}) {
		id := event.CampaignID.Hex()
		record.CampaignID = &id
	}
	if event.CampaignAddress != "" {
		addr := event.CampaignAddress
		record.CampaignAddress = &addr
	}
	if event.Actor != "" {
		actor := event.Actor
		record.Actor = &actor
	}
	if event.Token != "" {
		token := event.Token
		record.Token = &token
	}
	if event.Amount != "" {
		amount := event.Amount
		record.Amount = &amount
	}
	if r.json != nil {
		if payload, err := r.json.Marshal(event); err == nil {
			record.Payload = payload
		}
	}
	return record
}
