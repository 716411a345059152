package ocr

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"

	"github.com/customeros/mailsift/interfaces"
)

// TesseractEngine wraps a single gosseract client. The client is not safe
// for concurrent use, so calls are serialized.
type TesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func NewTesseractEngine(languages ...string) (interfaces.OCREngine, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, errors.Wrap(err, "failed to set OCR languages")
		}
	}
	return &TesseractEngine{client: client}, nil
}

func (e *TesseractEngine) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(image); err != nil {
		return "", errors.Wrap(err, "failed to load image")
	}
	text, err := e.client.Text()
	if err != nil {
		return "", errors.Wrap(err, "failed to recognize text")
	}
	return text, nil
}

func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
