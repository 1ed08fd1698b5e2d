package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/rbac"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// protocolAttempts bounds the regenerate-and-retry loop on a protocol
// number collision.
const protocolAttempts = 3

// ClaimService owns the claim lifecycle: public intake, RBAC-scoped reads
// with masking, and the status workflow. It is the only mutator of
// Claim.Status.
type ClaimService struct {
	claimRepo *repository.ClaimRepository
	storeRepo *repository.StoreRepository
	hub       *sse.Hub
	logger    *zap.Logger
}

// NewClaimService creates the claim service.
func NewClaimService(claimRepo *repository.ClaimRepository, storeRepo *repository.StoreRepository, hub *sse.Hub, logger *zap.Logger) *ClaimService {
	return &ClaimService{
		claimRepo: claimRepo,
		storeRepo: storeRepo,
		hub:       hub,
		logger:    logger,
	}
}

// CreatePublicClaimRequest public warranty form payload.
type CreatePublicClaimRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`

	ItemType           string `json:"item_type"`
	ProductDescription string `json:"product_description" binding:"required"`
	SerialNumber       string `json:"serial_number"`
	InvoiceNumber      string `json:"invoice_number"`
	PurchaseDate       string `json:"purchase_date"`

	PurchaseStoreName  string `json:"purchase_store_name" binding:"required"`
	PurchaseStoreCity  string `json:"purchase_store_city"`
	PurchaseStoreState string `json:"purchase_store_state"`
}

// newProtocolNumber generates a human-readable protocol: HB-<YYYYMMDD>-<4 digits>.
// Not collision-proof on its own; CreatePublic retries on the unique index.
func newProtocolNumber(now time.Time) string {
	return fmt.Sprintf("HB-%s-%04d", now.Format("20060102"), 1000+rand.Intn(9000))
}

// CreatePublic registers a claim from the public warranty form: generates
// the protocol number, attempts automatic store matching and persists the
// claim in its initial RECEBIDO status.
func (s *ClaimService) CreatePublic(ctx context.Context, req *CreatePublicClaimRequest) (*entity.Claim, error) {
	var purchaseDate *time.Time
	if req.PurchaseDate != "" {
		d, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, validationErrorf("data de compra inválida: %s", req.PurchaseDate)
		}
		purchaseDate = &d
	}

	claim := &entity.Claim{
		ID:                 uuid.New().String()[:32],
		CustomerName:       strings.TrimSpace(req.CustomerName),
		CustomerPhone:      strings.TrimSpace(req.CustomerPhone),
		CustomerEmail:      strings.TrimSpace(req.CustomerEmail),
		ItemType:           req.ItemType,
		ProductDescription: strings.TrimSpace(req.ProductDescription),
		SerialNumber:       req.SerialNumber,
		InvoiceNumber:      req.InvoiceNumber,
		PurchaseDate:       purchaseDate,
		PurchaseStoreName:  strings.TrimSpace(req.PurchaseStoreName),
		PurchaseStoreCity:  req.PurchaseStoreCity,
		PurchaseStoreState: req.PurchaseStoreState,
		Status:             entity.StatusRecebido,
		LinkStatus:         entity.LinkPendingReview,
	}
	if claim.CustomerName == "" || claim.CustomerPhone == "" || claim.ProductDescription == "" || claim.PurchaseStoreName == "" {
		return nil, validationErrorf("campos obrigatórios ausentes")
	}

	// Store matching (exact normalized match; anything fuzzier stays manual).
	stores, err := s.storeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores for matching: %w", err)
	}
	if match := matchStore(stores, claim.PurchaseStoreName); match != nil {
		claim.StoreID = &match.ID
		claim.LinkStatus = entity.LinkLinkedAuto
	}

	for attempt := 0; attempt < protocolAttempts; attempt++ {
		claim.ProtocolNumber = newProtocolNumber(time.Now())
		err = s.claimRepo.Create(ctx, claim)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create claim: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}

	if claim.StoreID != nil {
		if err := s.storeRepo.IncrementClaimsCount(ctx, *claim.StoreID, 1); err != nil {
			s.logger.Warn("increment store claims count", zap.Error(err))
		}
	}

	s.logger.Info("public claim registered",
		zap.String("claim_id", claim.ID),
		zap.String("protocol", claim.ProtocolNumber),
		zap.String("link_status", string(claim.LinkStatus)))

	return claim, nil
}

// ListFilter caller-supplied claim list filter.
type ListFilter struct {
	Status         string
	ProtocolNumber string
	LinkStatus     string
}

// List returns the claims the actor may see, most recent first. Store
// callers get only their own store's claims with customer contact fields
// masked; unknown roles get nothing.
func (s *ClaimService) List(ctx context.Context, actor Actor, filter ListFilter) ([]entity.Claim, error) {
	repoFilter := repository.ClaimFilter{
		Status:         entity.ClaimStatus(filter.Status),
		ProtocolNumber: filter.ProtocolNumber,
		LinkStatus:     entity.LinkStatus(filter.LinkStatus),
	}

	switch actor.Role {
	case entity.RoleAdmin, entity.RoleManager:
	case entity.RoleStore:
		if actor.StoreID == "" {
			return nil, ErrForbidden
		}
		repoFilter.StoreID = actor.StoreID
	default:
		return []entity.Claim{}, nil
	}

	claims, err := s.claimRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	if actor.Role == entity.RoleStore {
		for i := range claims {
			MaskClaim(&claims[i])
		}
	}
	return claims, nil
}

// GetByID returns one claim if the actor may see it. A store caller asking
// for a foreign claim gets ErrNotFound, deliberately not confirming the
// claim exists.
func (s *ClaimService) GetByID(ctx context.Context, actor Actor, id string) (*entity.Claim, error) {
	claim, err := s.claimRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}

	if !rbac.CanAccessClaim(actor.Role, actor.StoreID, claim) {
		return nil, ErrNotFound
	}

	if actor.Role == entity.RoleStore {
		MaskClaim(claim)
	}
	return claim, nil
}

// PublicClaimView trimmed projection for the unauthenticated tracking
// page. Carries no customer contact data at all.
type PublicClaimView struct {
	ProtocolNumber     string             `json:"protocol_number"`
	Status             entity.ClaimStatus `json:"status"`
	ItemType           string             `json:"item_type"`
	ProductDescription string             `json:"product_description"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// TrackByProtocol looks a claim up by protocol number for the public
// tracking page.
func (s *ClaimService) TrackByProtocol(ctx context.Context, protocol string) (*PublicClaimView, error) {
	claim, err := s.claimRepo.FindByProtocol(ctx, strings.TrimSpace(protocol))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find claim by protocol: %w", err)
	}
	return &PublicClaimView{
		ProtocolNumber:     claim.ProtocolNumber,
		Status:             claim.Status,
		ItemType:           claim.ItemType,
		ProductDescription: claim.ProductDescription,
		CreatedAt:          claim.CreatedAt,
		UpdatedAt:          claim.UpdatedAt,
	}, nil
}

// UpdateStatus moves a claim through the workflow. The access check, the
// transition check against the committed status, the claim update and the
// audit event all happen under the claim's row lock, so two racing calls
// cannot both read the pre-transition status.
func (s *ClaimService) UpdateStatus(ctx context.Context, actor Actor, claimID, toStatus, comment string) (*entity.Claim, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, validationErrorf("comentário é obrigatório")
	}
	target := entity.ClaimStatus(toStatus)
	if !target.Valid() {
		return nil, validationErrorf("status desconhecido: %s", toStatus)
	}

	var from entity.ClaimStatus
	updated, err := s.claimRepo.Transition(ctx, claimID, func(claim *entity.Claim) (*entity.ClaimEvent, error) {
		if !rbac.CanAccessClaim(actor.Role, actor.StoreID, claim) {
			return nil, ErrForbidden
		}
		if !rbac.CanTransition(actor.Role, claim.Status, target) {
			return nil, &InvalidTransitionError{Role: actor.Role, From: claim.Status, To: target}
		}

		from = claim.Status
		claim.Status = target

		fromCopy, toCopy := from, target
		return &entity.ClaimEvent{
			ID:         uuid.New().String()[:32],
			EventType:  entity.EventStatusChange,
			FromStatus: &fromCopy,
			ToStatus:   &toCopy,
			Comment:    comment,
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			CreatedAt:  time.Now(),
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.logger.Info("claim status changed",
		zap.String("claim_id", updated.ID),
		zap.String("protocol", updated.ProtocolNumber),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor_id", actor.ID),
		zap.String("role", string(actor.Role)))

	if s.hub != nil {
		s.hub.PublishClaimUpdate(sse.ClaimUpdate{
			ClaimID:        updated.ID,
			ProtocolNumber: updated.ProtocolNumber,
			FromStatus:     string(from),
			ToStatus:       string(target),
		})
	}

	if actor.Role == entity.RoleStore {
		MaskClaim(updated)
	}
	return updated, nil
}

// History returns the claim's audit trail in creation order, subject to
// the same visibility rule as the detail view.
func (s *ClaimService) History(ctx context.Context, actor Actor, claimID string) ([]entity.ClaimEvent, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	if !rbac.CanAccessClaim(actor.Role, actor.StoreID, claim) {
		return nil, ErrNotFound
	}
	return s.claimRepo.FindEventsByClaim(ctx, claimID)
}

// AddComment appends a COMMENT event to the claim's timeline.
func (s *ClaimService) AddComment(ctx context.Context, actor Actor, claimID, comment string) (*entity.ClaimEvent, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, validationErrorf("comentário é obrigatório")
	}

	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	if !rbac.CanAccessClaim(actor.Role, actor.StoreID, claim) {
		return nil, ErrNotFound
	}

	event := &entity.ClaimEvent{
		ID:        uuid.New().String()[:32],
		ClaimID:   claim.ID,
		EventType: entity.EventComment,
		Comment:   comment,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		CreatedAt: time.Now(),
	}
	if err := s.claimRepo.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}
	return event, nil
}

// LinkStore manually resolves a PENDING_REVIEW claim to a store. Staff
// only: a store user may not relink claims, not even to their own store.
func (s *ClaimService) LinkStore(ctx context.Context, actor Actor, claimID, storeID string) (*entity.Claim, error) {
	if actor.Role != entity.RoleAdmin && actor.Role != entity.RoleManager {
		return nil, ErrForbidden
	}

	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("loja não encontrada: %s", storeID)
		}
		return nil, fmt.Errorf("find store: %w", err)
	}

	// The link runs under the claim's row lock so a status transition
	// committing concurrently is never overwritten by the relink write.
	var previous *string
	updated, err := s.claimRepo.Transition(ctx, claimID, func(claim *entity.Claim) (*entity.ClaimEvent, error) {
		previous = claim.StoreID
		claim.StoreID = &store.ID
		claim.LinkStatus = entity.LinkLinkedManually

		return &entity.ClaimEvent{
			ID:        uuid.New().String()[:32],
			EventType: entity.EventComment,
			Comment:   fmt.Sprintf("Reclamação vinculada manualmente à loja %s", store.TradeName),
			ActorID:   actor.ID,
			ActorName: actor.Name,
			CreatedAt: time.Now(),
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("link store: %w", err)
	}

	if previous != nil && *previous != store.ID {
		if err := s.storeRepo.IncrementClaimsCount(ctx, *previous, -1); err != nil {
			s.logger.Warn("decrement store claims count", zap.Error(err))
		}
	}
	if previous == nil || *previous != store.ID {
		if err := s.storeRepo.IncrementClaimsCount(ctx, store.ID, 1); err != nil {
			s.logger.Warn("increment store claims count", zap.Error(err))
		}
	}

	return updated, nil
}

// AllowedTransitions lists the statuses the actor may move the claim to.
func (s *ClaimService) AllowedTransitions(ctx context.Context, actor Actor, claimID string) ([]entity.ClaimStatus, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	if !rbac.CanAccessClaim(actor.Role, actor.StoreID, claim) {
		return nil, ErrNotFound
	}
	targets := rbac.AllowedTargets(actor.Role, claim.Status)
	if targets == nil {
		targets = []entity.ClaimStatus{}
	}
	return targets, nil
}
