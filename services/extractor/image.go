package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/enum"
)

const ocrTimeout = 2 * time.Minute

type imageStrategy struct {
	engine interfaces.OCREngine
}

func (imageStrategy) Kind() enum.ContentKind { return enum.ContentImage }

func (s imageStrategy) Extract(data []byte) (string, dto.ExtractionMetadata, error) {
	if s.engine == nil {
		return "", dto.ExtractionMetadata{}, errors.New("no OCR engine configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), ocrTimeout)
	defer cancel()

	text, err := s.engine.RecognizeText(ctx, data)
	if err != nil {
		return "", dto.ExtractionMetadata{}, errors.Wrap(err, "ocr failed")
	}
	return strings.TrimSpace(text), dto.ExtractionMetadata{}, nil
}
