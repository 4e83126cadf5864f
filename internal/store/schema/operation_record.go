package schema

import (
	"time"

	"gorm.io/datatypes"
)

// OperationRecord is the append-only journal row for every event the relay
// fans out: campaign events and module-level operation logs alike.
type OperationRecord struct {
	// ID is the journal row identifier
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// EventType is the normalized protocol event type
	EventType string `gorm:"column:event_type;not null;index"`
	// CampaignID is the content-derived campaign identifier, when campaign-scoped
	CampaignID *string `gorm:"column:campaign_id;index"`
	// CampaignAddress is the emitting campaign's address, when campaign-scoped
	CampaignAddress *string `gorm:"column:campaign_address;index"`
	// Actor is the contributor, owner, or admin the event concerns
	Actor *string `gorm:"column:actor"`
	// Token is the token address the event concerns
	Token *string `gorm:"column:token"`
	// Amount is the smallest-unit amount (stored as string to support up to 78 digits)
	Amount *string `gorm:"column:amount;type:numeric(78,0)"`
	// Payload is the full normalized event for consumers that need every field
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// EmittedAt is the logical time the event was emitted
	EmittedAt time.Time `gorm:"column:emitted_at;not null;type:timestamptz"`
	// CreatedAt is the timestamp when the row was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the OperationRecord model
func (OperationRecord) TableName() string {
	return "operation_records"
}
