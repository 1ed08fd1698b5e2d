package service

import (
	"github.com/Murilo2811/relm-care-plus/internal/config"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/sse"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Actor identifies the authenticated caller of a service operation.
// StoreID is empty for admin and manager roles.
type Actor struct {
	ID      string
	Name    string
	Role    entity.Role
	StoreID string
}

// Services service bundle.
type Services struct {
	Claim      *ClaimService
	Auth       *AuthService
	Store      *StoreService
	User       *UserService
	Attachment *AttachmentService
}

// NewServices wires the service bundle.
func NewServices(repos *repository.Repositories, rdb *redis.Client, minioClient *minio.Client, hub *sse.Hub, cfg *config.Config, logger *zap.Logger) *Services {
	return &Services{
		Claim:      NewClaimService(repos.Claim, repos.Store, hub, logger),
		Auth:       NewAuthService(repos.User, rdb, cfg),
		Store:      NewStoreService(repos.Store),
		User:       NewUserService(repos.User, repos.Store),
		Attachment: NewAttachmentService(repos.Attachment, repos.Claim, minioClient, cfg.MinIO.Bucket),
	}
}
