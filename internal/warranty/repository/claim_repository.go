package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClaimFilter typed filter for claim listings.
type ClaimFilter struct {
	Status         entity.ClaimStatus
	ProtocolNumber string
	StoreID        string
	LinkStatus     entity.LinkStatus
}

// ClaimRepository warranty claim repository.
type ClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a claim repository.
func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// FindByID loads one claim.
func (r *ClaimRepository) FindByID(ctx context.Context, id string) (*entity.Claim, error) {
	var claim entity.Claim
	err := r.db.WithContext(ctx).
		Preload("Store").
		Where("id = ?", id).
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// FindByProtocol loads one claim by its protocol number.
func (r *ClaimRepository) FindByProtocol(ctx context.Context, protocol string) (*entity.Claim, error) {
	var claim entity.Claim
	err := r.db.WithContext(ctx).
		Where("protocol_number = ?", protocol).
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// Create inserts a new claim. A protocol-number collision surfaces as
// ErrDuplicate so the caller can regenerate and retry.
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	err := r.db.WithContext(ctx).Create(claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// List returns claims matching the filter, most recently created first.
func (r *ClaimRepository) List(ctx context.Context, filter ClaimFilter) ([]entity.Claim, error) {
	var claims []entity.Claim

	query := r.db.WithContext(ctx).Model(&entity.Claim{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProtocolNumber != "" {
		query = query.Where("protocol_number = ?", filter.ProtocolNumber)
	}
	if filter.StoreID != "" {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.LinkStatus != "" {
		query = query.Where("link_status = ?", filter.LinkStatus)
	}

	err := query.
		Preload("Store").
		Order("created_at DESC").
		Find(&claims).Error
	return claims, err
}

// Transition runs mutate against the claim under a row lock and persists
// the resulting claim update together with the returned event in one
// transaction. Either both rows are written or neither is; concurrent
// mutations on the same claim serialize on the lock, so mutate always
// sees the current committed state.
func (r *ClaimRepository) Transition(ctx context.Context, claimID string, mutate func(claim *entity.Claim) (*entity.ClaimEvent, error)) (*entity.Claim, error) {
	var updated *entity.Claim
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claim entity.Claim
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", claimID).
			First(&claim).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		event, err := mutate(&claim)
		if err != nil {
			return err
		}

		claim.UpdatedAt = time.Now()
		if err := tx.Save(&claim).Error; err != nil {
			return err
		}
		if event != nil {
			event.ClaimID = claim.ID
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		updated = &claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AppendEvent inserts a standalone event (plain comments).
func (r *ClaimRepository) AppendEvent(ctx context.Context, event *entity.ClaimEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindEventsByClaim returns the claim's audit trail in creation order.
// The id tiebreaker keeps the order stable when two events land on the
// same timestamp.
func (r *ClaimRepository) FindEventsByClaim(ctx context.Context, claimID string) ([]entity.ClaimEvent, error) {
	var events []entity.ClaimEvent
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

// CountByStore counts claims linked to a store.
func (r *ClaimRepository) CountByStore(ctx context.Context, storeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Claim{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}
