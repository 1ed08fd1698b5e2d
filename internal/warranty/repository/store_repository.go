package repository

import (
	"context"
	"errors"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"gorm.io/gorm"
)

// StoreRepository partner store repository.
type StoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a store repository.
func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// FindByID loads one store.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*entity.Store, error) {
	var store entity.Store
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &store, nil
}

// List returns stores, optionally only active ones, ordered by trade name.
func (r *StoreRepository) List(ctx context.Context, activeOnly bool) ([]entity.Store, error) {
	var stores []entity.Store
	query := r.db.WithContext(ctx).Model(&entity.Store{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("trade_name ASC").Find(&stores).Error
	return stores, err
}

// ListActive returns all active stores; intake matching scans these.
func (r *StoreRepository) ListActive(ctx context.Context) ([]entity.Store, error) {
	return r.List(ctx, true)
}

// Create inserts a new store.
func (r *StoreRepository) Create(ctx context.Context, store *entity.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// Update persists store changes.
func (r *StoreRepository) Update(ctx context.Context, store *entity.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

// IncrementClaimsCount bumps the denormalized claim counter.
func (r *StoreRepository) IncrementClaimsCount(ctx context.Context, id string, delta int) error {
	return r.db.WithContext(ctx).
		Model(&entity.Store{}).
		Where("id = ?", id).
		UpdateColumn("claims_count", gorm.Expr("claims_count + ?", delta)).Error
}
