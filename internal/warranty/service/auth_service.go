package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/config"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// refreshKeyPrefix namespaces refresh tokens in redis.
const refreshKeyPrefix = "auth:refresh:"

// CredentialVerifier checks a password against the identity provider.
// Hashing and credential storage live outside this service.
type CredentialVerifier interface {
	Verify(ctx context.Context, user *entity.User, password string) error
}

// AuthService issues and refreshes JWT sessions for staff users.
type AuthService struct {
	userRepo *repository.UserRepository
	verifier CredentialVerifier
	rdb      *redis.Client
	cfg      *config.Config
}

// NewAuthService creates the auth service.
func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		rdb:      rdb,
		cfg:      cfg,
	}
}

// SetCredentialVerifier injects the identity-provider adapter.
func (s *AuthService) SetCredentialVerifier(v CredentialVerifier) {
	s.verifier = v
}

// TokenPair access + refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login authenticates a staff user and issues a token pair. Unknown
// emails and bad passwords both surface as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Active {
		return nil, nil, ErrUserInactive
	}

	if s.verifier == nil {
		return nil, nil, fmt.Errorf("auth service misconfigured: no credential verifier")
	}
	if err := s.verifier.Verify(ctx, user, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}
	return user, pair, nil
}

// Refresh rotates a refresh token into a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.rdb.Get(ctx, refreshKeyPrefix+refreshToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	// One refresh per token: the old one is invalidated on rotation.
	if err := s.rdb.Del(ctx, refreshKeyPrefix+refreshToken).Err(); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return pair, nil
}

// Logout revokes a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.rdb.Del(ctx, refreshKeyPrefix+refreshToken).Err()
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()
	expire := s.cfg.JWT.AccessTokenExpire

	storeID := ""
	if user.StoreID != nil {
		storeID = *user.StoreID
	}

	claims := jwt.MapClaims{
		"sub":      user.ID,
		"uid":      user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"role":     string(user.Role),
		"store_id": storeID,
		"iss":      s.cfg.JWT.Issuer,
		"iat":      now.Unix(),
		"exp":      now.Add(expire).Unix(),
		"jti":      uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	if err := s.rdb.Set(ctx, refreshKeyPrefix+refreshToken, user.ID, s.cfg.JWT.RefreshTokenExpire).Err(); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(expire.Seconds()),
	}, nil
}
