package interfaces

import (
	"context"

	"github.com/customeros/mailsift/dto"
)

// ClassificationService never fails: remote or parse problems produce the default classification.
type ClassificationService interface {
	Classify(ctx context.Context, message *dto.Message) dto.Classification
}

type GenerativeModel interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
