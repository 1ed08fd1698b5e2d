package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/rbac"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// downloadURLExpiry lifetime of presigned attachment download links.
const downloadURLExpiry = 15 * time.Minute

// AttachmentService claim evidence files: binaries in MinIO, metadata in
// the database. Visibility follows the owning claim.
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	claimRepo      *repository.ClaimRepository
	minioClient    *minio.Client
	bucket         string
}

// NewAttachmentService creates the attachment service.
func NewAttachmentService(attachmentRepo *repository.AttachmentRepository, claimRepo *repository.ClaimRepository, minioClient *minio.Client, bucket string) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		claimRepo:      claimRepo,
		minioClient:    minioClient,
		bucket:         bucket,
	}
}

func (s *AttachmentService) loadVisibleClaim(ctx context.Context, actor Actor, claimID string) (*entity.Claim, error) {
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
	return claim, nil
}

// Upload stores one evidence file for a claim.
func (s *AttachmentService) Upload(ctx context.Context, actor Actor, claimID, fileName, contentType string, size int64, reader io.Reader) (*entity.ClaimAttachment, error) {
	claim, err := s.loadVisibleClaim(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}
	if s.minioClient == nil {
		return nil, fmt.Errorf("object storage not configured")
	}

	objectPath := fmt.Sprintf("claims/%s/%s%s",
		time.Now().Format("2006/01"), uuid.New().String()[:8], filepath.Ext(fileName))

	_, err = s.minioClient.PutObject(ctx, s.bucket, objectPath, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	att := &entity.ClaimAttachment{
		ID:          uuid.New().String()[:32],
		ClaimID:     claim.ID,
		FileName:    fileName,
		FileSize:    size,
		ContentType: contentType,
		ObjectPath:  objectPath,
		UploadedBy:  actor.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.attachmentRepo.Create(ctx, att); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return att, nil
}

// List returns a claim's attachments.
func (s *AttachmentService) List(ctx context.Context, actor Actor, claimID string) ([]entity.ClaimAttachment, error) {
	if _, err := s.loadVisibleClaim(ctx, actor, claimID); err != nil {
		return nil, err
	}
	return s.attachmentRepo.ListByClaim(ctx, claimID)
}

// DownloadURL returns a short-lived presigned URL for one attachment.
func (s *AttachmentService) DownloadURL(ctx context.Context, actor Actor, claimID, attachmentID string) (string, error) {
	if _, err := s.loadVisibleClaim(ctx, actor, claimID); err != nil {
		return "", err
	}

	att, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find attachment: %w", err)
	}
	if att.ClaimID != claimID {
		return "", ErrNotFound
	}
	if s.minioClient == nil {
		return "", fmt.Errorf("object storage not configured")
	}

	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))

	u, err := s.minioClient.PresignedGetObject(ctx, s.bucket, att.ObjectPath, downloadURLExpiry, params)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return u.String(), nil
}
