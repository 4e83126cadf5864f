package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sproutfund/protocol-core/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a
// GORM database connection. Zero values fall back to defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// InsertOperationRecord appends one journal row
func (s *pgStore) InsertOperationRecord(ctx context.Context, record *schema.OperationRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to insert operation record: %w", err)
	}
	return nil
}

// GetOperationRecordsByCampaign returns the journal rows for a campaign in
// emission order
func (s *pgStore) GetOperationRecordsByCampaign(ctx context.Context, campaignID string, limit int) ([]schema.OperationRecord, error) {
	var records []schema.OperationRecord
	query := s.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("emitted_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query operation records: %w", err)
	}
	return records, nil
}
