package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/mailsift/internal/utils"
)

// EmailAttachment holds the extracted text of an attachment and, when the
// attachment was promoted, where the durable copy lives.
type EmailAttachment struct {
	ID             string `gorm:"column:id;type:varchar(50);primaryKey"`
	EmailID        string `gorm:"column:email_id;type:varchar(50);index;not null"`
	UserID         string `gorm:"column:user_id;type:varchar(255);index;not null"`
	AttachmentID   string `gorm:"column:attachment_id;type:varchar(1000)"`
	Filename       string `gorm:"column:filename;type:varchar(500)"`
	UniqueFilename string `gorm:"column:unique_filename;type:varchar(500)"`
	ContentType    string `gorm:"column:content_type;type:varchar(255)"`
	Extension      string `gorm:"column:extension;type:varchar(20)"`
	Size           int64  `gorm:"column:size;default:0"`
	DownloadError  string `gorm:"column:download_error;type:text"`

	// Extraction
	ExtractionSuccess bool    `gorm:"column:extraction_success;default:false"`
	ExtractedText     string  `gorm:"column:extracted_text;type:text"`
	ExtractionError   string  `gorm:"column:extraction_error;type:text"`
	Metadata          JSONMap `gorm:"column:metadata;type:jsonb"`

	// Storage options
	StorageService string `gorm:"column:storage_service;type:varchar(50)"` // "r2", "s3" or empty when not promoted
	StorageBucket  string `gorm:"column:storage_bucket;type:varchar(255)"`
	StorageKey     string `gorm:"column:storage_key;type:varchar(1000)"`
	PublicURL      string `gorm:"column:public_url;type:varchar(1000)"`

	// SHA-256 of the raw bytes
	ContentHash string `gorm:"column:content_hash;type:varchar(64);index"`

	// Standard timestamps
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (EmailAttachment) TableName() string {
	return "email_attachments"
}

func (e *EmailAttachment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("file", 12)
	}
	e.CreatedAt = utils.Now()
	e.UpdatedAt = e.CreatedAt
	return nil
}

func (e *EmailAttachment) IsPromoted() bool {
	return e.StorageKey != ""
}
