package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solport/devportal/pkg/domain/usage"
)

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) usage.Repository {
	return &usageRepository{
		db: db,
	}
}

func (r *usageRepository) UpsertTotal(ctx context.Context, total *usage.UsageTotal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}, {Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_requests", "total_volume", "last_used_at", "updated_at"}),
	}).Create(total).Error
}

func (r *usageRepository) UpsertArchive(ctx context.Context, record *usage.ArchivedUsageRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}, {Name: "identity"}, {Name: "usage_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_count", "total_volume", "breakdown"}),
	}).Create(record).Error
}

func (r *usageRepository) ListArchiveRange(ctx context.Context, domain, identity, fromDate, toDate string) ([]usage.ArchivedUsageRecord, error) {
	var records []usage.ArchivedUsageRecord
	if err := r.db.WithContext(ctx).
		Where("domain = ? AND identity = ? AND usage_date BETWEEN ? AND ?", domain, identity, fromDate, toDate).
		Order("usage_date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *usageRepository) DeleteArchivesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("usage_date < ?", cutoff.UTC().Format(usage.DateLayout)).
		Delete(&usage.ArchivedUsageRecord{})
	return result.RowsAffected, result.Error
}
