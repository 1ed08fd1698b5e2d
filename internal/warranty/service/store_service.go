package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/google/uuid"
)

// StoreService store directory management.
type StoreService struct {
	storeRepo *repository.StoreRepository
}

// NewStoreService creates the store service.
func NewStoreService(storeRepo *repository.StoreRepository) *StoreService {
	return &StoreService{storeRepo: storeRepo}
}

// List returns the store directory.
func (s *StoreService) List(ctx context.Context, activeOnly bool) ([]entity.Store, error) {
	return s.storeRepo.List(ctx, activeOnly)
}

// Get returns one store.
func (s *StoreService) Get(ctx context.Context, id string) (*entity.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find store: %w", err)
	}
	return store, nil
}

// CreateStoreRequest store registration payload.
type CreateStoreRequest struct {
	TradeName    string   `json:"trade_name" binding:"required"`
	LegalName    string   `json:"legal_name" binding:"required"`
	CNPJ         string   `json:"cnpj" binding:"required"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ContactName  string   `json:"contact_name"`
	ContactEmail string   `json:"contact_email"`
	Aliases      []string `json:"aliases"`
}

// Create registers a new store.
func (s *StoreService) Create(ctx context.Context, req *CreateStoreRequest) (*entity.Store, error) {
	store := &entity.Store{
		ID:           uuid.New().String()[:32],
		TradeName:    req.TradeName,
		LegalName:    req.LegalName,
		CNPJ:         req.CNPJ,
		City:         req.City,
		State:        req.State,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Aliases:      req.Aliases,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return store, nil
}

// UpdateStoreRequest partial store update.
type UpdateStoreRequest struct {
	TradeName    *string   `json:"trade_name"`
	LegalName    *string   `json:"legal_name"`
	City         *string   `json:"city"`
	State        *string   `json:"state"`
	ContactName  *string   `json:"contact_name"`
	ContactEmail *string   `json:"contact_email"`
	Aliases      *[]string `json:"aliases"`
	Active       *bool     `json:"active"`
}

// Update applies a partial update to a store.
func (s *StoreService) Update(ctx context.Context, id string, req *UpdateStoreRequest) (*entity.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find store: %w", err)
	}

	if req.TradeName != nil {
		store.TradeName = *req.TradeName
	}
	if req.LegalName != nil {
		store.LegalName = *req.LegalName
	}
	if req.City != nil {
		store.City = *req.City
	}
	if req.State != nil {
		store.State = *req.State
	}
	if req.ContactName != nil {
		store.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		store.ContactEmail = *req.ContactEmail
	}
	if req.Aliases != nil {
		store.Aliases = *req.Aliases
	}
	if req.Active != nil {
		store.Active = *req.Active
	}
	store.UpdatedAt = time.Now()

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}
	return store, nil
}
