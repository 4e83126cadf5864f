package store

import (
	"context"

	"github.com/sproutfund/protocol-core/internal/store/schema"
)

// Store defines the interface for the operation journal.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// InsertOperationRecord appends one journal row
	InsertOperationRecord(ctx context.Context, record *schema.OperationRecord) error
	// GetOperationRecordsByCampaign returns the journal rows for a campaign
	// in emission order
	GetOperationRecordsByCampaign(ctx context.Context, campaignID string, limit int) ([]schema.OperationRecord, error)
}
