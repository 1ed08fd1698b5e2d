package entity

import (
	"time"
)

// ClaimAttachment evidence file (invoice, photos) attached to a claim.
// The binary lives in object storage; this row only keeps the metadata.
type ClaimAttachment struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	ClaimID     string `json:"claim_id" gorm:"size:32;not null;index"`
	FileName    string `json:"file_name" gorm:"size:255;not null"`
	FileSize    int64  `json:"file_size" gorm:"not null"`
	ContentType string `json:"content_type" gorm:"size:128"`
	ObjectPath  string `json:"object_path" gorm:"size:512;not null"`
	UploadedBy  string `json:"uploaded_by" gorm:"size:32"`

	CreatedAt time.Time `json:"created_at"`
}

func (ClaimAttachment) TableName() string {
	return "claim_attachments"
}
