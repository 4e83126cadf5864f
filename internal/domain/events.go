package domain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventType identifies a protocol event published to off-chain consumers.
type EventType string

const (
	EventTypeContribution          EventType = "contribution"
	EventTypeFundsClaimed          EventType = "funds_claimed"
	EventTypeRefundIssued          EventType = "refund_issued"
	EventTypeCampaignStatusChanged EventType = "campaign_status_changed"
	EventTypeAdminOverrideSet      EventType = "admin_override_set"
	EventTypeCampaignCreated       EventType = "campaign_created"
	EventTypeOperation             EventType = "operation"
)

// OperationType is the operation-type code carried by module-level
// operation records.
type OperationType uint8

const (
	OpAdminAdded OperationType = iota + 1
	OpAdminRemoved
	OpGracePeriodUpdated
	OpTokenAdded
	OpTokenRemoved
	OpTokenEnabled
	OpTokenDisabled
	OpMinimumContributionUpdated
	OpFeeShareUpdated
	OpTreasuryUpdated
	OpVaultDeposit
	OpVaultWithdraw
	OpFactoryAuthorized
	OpFactoryDeauthorized
	OpCampaignAuthorized
	OpCampaignDeauthorized
)

// Event is the normalized protocol event. Campaign-scoped events carry the
// campaign id and address; module operation records carry an operation-type
// code plus the relevant addresses and amounts. Amounts are decimal
// smallest-unit strings to survive any transport without precision loss.
type Event struct {
	Type            EventType      `json:"type"`
	CampaignID      CampaignID     `json:"campaign_id,omitempty"`
	CampaignAddress string         `json:"campaign_address,omitempty"`
	Actor           string         `json:"actor,omitempty"` // contributor, owner, or admin
	Token           string         `json:"token,omitempty"`
	Amount          string         `json:"amount,omitempty"`
	OldStatus       CampaignStatus `json:"old_status,omitempty"`
	NewStatus       CampaignStatus `json:"new_status,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	OverrideActive  bool           `json:"override_active,omitempty"`
	Operation       OperationType  `json:"operation,omitempty"`
	Module          string         `json:"module,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// OperationRecorder receives module-level operation records. The event
// relay implements it; modules fall back to plain logging when nil.
//
//go:generate mockgen -source=events.go -destination=../mocks/recorder.go -package=mocks
type OperationRecorder interface {
	// RecordOperation forwards a module operation record to the emission hub
	RecordOperation(ctx context.Context, event *Event)
}

// FundsRecorder receives fund-movement records initiated by campaigns.
// Unlike OperationRecorder this path is authorization-gated: the relay
// rejects emissions from campaigns outside its authorized set.
type FundsRecorder interface {
	// EmitFundsOperation records a vault fund movement on behalf of campaign
	EmitFundsOperation(ctx context.Context, campaign common.Address, op OperationType, token common.Address, amount *uint256.Int) error
}

// NewOperationEvent builds a module operation record.
func NewOperationEvent(module string, op OperationType, actor, subject common.Address, amount string, at time.Time) *Event {
	return &Event{
		Type:      EventTypeOperation,
		Module:    module,
		Operation: op,
		Actor:     actor.Hex(),
		Token:     subject.Hex(),
		Amount:    amount,
		Timestamp: at,
	}
}
