package interfaces

import (
	"context"
	"time"

	"github.com/customeros/mailsift/dto"
)

type StagingService interface {
	Stage(ctx context.Context, attachment *dto.Attachment, messageID string) (*dto.StagedFile, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Sweep(ctx context.Context, maxAge time.Duration) (dto.SweepResult, error)
}
