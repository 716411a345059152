package interfaces

import (
	"context"
	"time"

	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/models"
)

type EmailRepository interface {
	Create(ctx context.Context, email *models.Email) (string, error)
	GetByID(ctx context.Context, id string) (*models.Email, error)
	GetByProviderMessageID(ctx context.Context, userID, providerMessageID string) (*models.Email, error)
	Exists(ctx context.Context, userID, providerMessageID string) (bool, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Email, int64, error)
	UpdateClassification(ctx context.Context, id string, category enum.EmailCategory, department enum.Department, priority enum.EmailPriority, reason string, classifiedAt time.Time) error
}
