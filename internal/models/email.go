package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/utils"
)

// Email is a relevant message persisted after classification. Only the
// classification columns change after insert.
type Email struct {
	ID                string             `gorm:"column:id;type:varchar(50);primaryKey"`
	UserID            string             `gorm:"column:user_id;type:varchar(255);not null;uniqueIndex:idx_emails_user_provider_message,priority:1"`
	ProviderMessageID string             `gorm:"column:provider_message_id;type:varchar(255);not null;uniqueIndex:idx_emails_user_provider_message,priority:2"`
	Provider          enum.EmailProvider `gorm:"column:provider;type:varchar(50);not null"`
	ThreadID          string             `gorm:"column:thread_id;type:varchar(255);index"`

	// Core email metadata
	FromAddress  string     `gorm:"column:from_address;type:varchar(255);index"`
	Subject      string     `gorm:"column:subject;type:varchar(1000)"`
	CleanSubject string     `gorm:"column:clean_subject;type:varchar(1000)"`
	BodyText     string     `gorm:"column:body_text;type:text"`
	SentAt       *time.Time `gorm:"column:sent_at;type:timestamp;index"`

	// Classification
	Category             enum.EmailCategory `gorm:"column:category;type:varchar(50);index"`
	Department           enum.Department    `gorm:"column:department;type:varchar(50);index"`
	Priority             enum.EmailPriority `gorm:"column:priority;type:varchar(20);index"`
	ClassificationReason string             `gorm:"column:classification_reason;type:text"`
	ClassifiedAt         *time.Time         `gorm:"column:classified_at;type:timestamp"`

	// Relevance inputs and enrichment
	AttachmentCount int        `gorm:"column:attachment_count;default:0"`
	Deadline        *time.Time `gorm:"column:deadline;type:timestamp;index"`
	IsProcessed     bool       `gorm:"column:is_processed;not null"`
	ProcessingError string     `gorm:"column:processing_error;type:text"`

	Attachments []EmailAttachment `gorm:"foreignKey:EmailID"`

	// Standard timestamps
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (Email) TableName() string {
	return "emails"
}

func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	if e.Subject != "" && e.CleanSubject == "" {
		e.CleanSubject = utils.NormalizeSubject(e.Subject)
	}
	e.CreatedAt = utils.Now()
	e.UpdatedAt = e.CreatedAt
	return nil
}
