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

// UserService staff account management.
type UserService struct {
	userRepo  *repository.UserRepository
	storeRepo *repository.StoreRepository
}

// NewUserService creates the user service.
func NewUserService(userRepo *repository.UserRepository, storeRepo *repository.StoreRepository) *UserService {
	return &UserService{userRepo: userRepo, storeRepo: storeRepo}
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, search string, role string) ([]entity.User, error) {
	return s.userRepo.List(ctx, repository.UserFilter{
		Search: search,
		Role:   entity.Role(role),
	})
}

// CreateUserRequest staff account payload.
type CreateUserRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Role    string  `json:"role" binding:"required"`
	StoreID *string `json:"store_id"`
	Active  *bool   `json:"active"`
}

// Create registers a staff account. A store-role account must carry a
// store binding or every claim lookup would fail closed on it.
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*entity.User, error) {
	role := entity.Role(req.Role)
	if !role.Valid() {
		return nil, validationErrorf("perfil desconhecido: %s", req.Role)
	}
	if role == entity.RoleStore {
		if req.StoreID == nil || *req.StoreID == "" {
			return nil, validationErrorf("usuário de loja precisa de uma loja vinculada")
		}
		if _, err := s.storeRepo.FindByID(ctx, *req.StoreID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationErrorf("loja não encontrada: %s", *req.StoreID)
			}
			return nil, fmt.Errorf("find store: %w", err)
		}
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user := &entity.User{
		ID:        uuid.New().String()[:32],
		Name:      req.Name,
		Email:     req.Email,
		Role:      role,
		StoreID:   req.StoreID,
		Active:    active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateUserRequest partial staff account update.
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Role    *string `json:"role"`
	StoreID *string `json:"store_id"`
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		if !role.Valid() {
			return nil, validationErrorf("perfil desconhecido: %s", *req.Role)
		}
		user.Role = role
	}
	if req.StoreID != nil {
		if *req.StoreID == "" {
			user.StoreID = nil
		} else {
			user.StoreID = req.StoreID
		}
	}
	if user.Role == entity.RoleStore && (user.StoreID == nil || *user.StoreID == "") {
		return nil, validationErrorf("usuário de loja precisa de uma loja vinculada")
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ToggleActive flips the user's active flag.
func (s *UserService) ToggleActive(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.Active = !user.Active
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("toggle user: %w", err)
	}
	return user, nil
}
