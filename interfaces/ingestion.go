package interfaces

import (
	"context"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/models"
)

type IngestionService interface {
	RunIngestion(ctx context.Context, userID string) dto.RunReport
	Reclassify(ctx context.Context, emailID string) (*dto.Classification, error)
	UserReport(ctx context.Context, userID string) (*dto.ClassificationReport, error)
	SweepStaging(ctx context.Context) (dto.SweepResult, error)
	AttachmentContent(ctx context.Context, attachmentID string) (*models.EmailAttachment, []byte, error)
}
