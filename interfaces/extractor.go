package interfaces

import (
	"context"

	"github.com/customeros/mailsift/dto"
)

type ContentExtractor interface {
	ExtractContent(data []byte, fileExtension, mimeType string) dto.ExtractionResult
}

type OCREngine interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
	Close() error
}
