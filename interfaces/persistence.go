package interfaces

import (
	"context"

	"github.com/customeros/mailsift/dto"
)

type PersistenceService interface {
	SaveRelevant(ctx context.Context, userID string, records []*dto.AssembledRecord) dto.SaveResult
	StorageConfigured() bool
}
