package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when there is no matching record
var ErrNotFound = errors.New("record not found")

// CountRepository persists counted vehicles
type CountRepository interface {
	Create(ctx context.Context, record *CountRecord) error
	List(ctx context.Context, limit, offset int) ([]*CountRecord, int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Latest(ctx context.Context) (*CountRecord, error)
}

type countRepository struct {
	db *gorm.DB
}

// NewCountRepository creates new instance of CountRepository
func NewCountRepository(db *gorm.DB) CountRepository {
	return &countRepository{
		db: db,
	}
}

// Create stores a record
func (r *countRepository) Create(ctx context.Context, record *CountRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create count record: %w", err)
	}
	return nil
}

// List returns records newest first together with total number of records
func (r *countRepository) List(ctx context.Context, limit, offset int) ([]*CountRecord, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&CountRecord{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	records := make([]*CountRecord, 0, limit)
	err := r.db.WithContext(ctx).
		Order("detected_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	return records, total, nil
}

// CountSince returns number of vehicles detected at or after since
func (r *countRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&CountRecord{}).Where("detected_at >= ?", since).Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return total, nil
}

// Latest returns most recently detected vehicle
func (r *countRepository) Latest(ctx context.Context) (*CountRecord, error) {
	var record CountRecord
	err := r.db.WithContext(ctx).Order("detected_at DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest record: %w", err)
	}
	return &record, nil
}
