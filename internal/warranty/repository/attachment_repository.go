package repository

import (
	"context"
	"errors"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"gorm.io/gorm"
)

// AttachmentRepository claim attachment metadata repository.
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates an attachment repository.
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// FindByID loads one attachment.
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*entity.ClaimAttachment, error) {
	var att entity.ClaimAttachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

// Create inserts attachment metadata.
func (r *AttachmentRepository) Create(ctx context.Context, att *entity.ClaimAttachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

// ListByClaim returns a claim's attachments in upload order.
func (r *AttachmentRepository) ListByClaim(ctx context.Context, claimID string) ([]entity.ClaimAttachment, error) {
	var atts []entity.ClaimAttachment
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at ASC").
		Find(&atts).Error
	return atts, err
}
