package repository

import (
	"errors"

	"gorm.io/gorm"
)

// sentinel errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Repositories repository bundle.
type Repositories struct {
	Claim      *ClaimRepository
	Store      *StoreRepository
	User       *UserRepository
	Attachment *AttachmentRepository
}

// NewRepositories creates the repository bundle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Claim:      NewClaimRepository(db),
		Store:      NewStoreRepository(db),
		User:       NewUserRepository(db),
		Attachment: NewAttachmentRepository(db),
	}
}
