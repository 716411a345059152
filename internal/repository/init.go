package repository

import (
	"gorm.io/gorm"

	"github.com/customeros/mailsift/interfaces"
)

type Repositories struct {
	EmailRepository           interfaces.EmailRepository
	EmailAttachmentRepository interfaces.EmailAttachmentRepository
}

// InitRepositories wires the repositories. storage may be nil when object
// storage is not configured.
func InitRepositories(db *gorm.DB, storage interfaces.StorageService) *Repositories {
	return &Repositories{
		EmailRepository:           NewEmailRepository(db),
		EmailAttachmentRepository: NewEmailAttachmentRepository(db, storage),
	}
}
