package extractor

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/utils"
)

type Service struct {
	cfg        *config.ExtractionConfig
	log        logger.Logger
	strategies map[string]Strategy
}

func NewExtractor(cfg *config.ExtractionConfig, ocrEngine interfaces.OCREngine, log logger.Logger) *Service {
	if cfg == nil {
		cfg = &config.ExtractionConfig{}
	}
	return &Service{
		cfg:        cfg,
		log:        log,
		strategies: strategyTable(ocrEngine),
	}
}

// ExtractContent turns raw attachment bytes into text. Failures are reported
// through the result, never as an error or a panic.
func (s *Service) ExtractContent(data []byte, fileExtension, mimeType string) (result dto.ExtractionResult) {
	ext := s.resolveExtension(data, fileExtension, mimeType)
	result.Metadata.Extension = ext
	result.Metadata.MimeType = mimeType
	result.Metadata.Bytes = len(data)

	strategy, ok := s.strategies[ext]
	if !ok {
		msg := fmt.Sprintf("unsupported file type: .%s (%s)", ext, mimeType)
		result.Metadata.Strategy = enum.ContentUnsupported
		result.Text = msg
		result.Error = msg
		return result
	}
	result.Metadata.Strategy = strategy.Kind()

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("panic extracting .%s content: %v", ext, r)
			err := fmt.Errorf("panic: %v", r)
			result.Success = false
			result.Text = "error: " + err.Error()
			result.Error = err.Error()
			result.Metadata.WordCount = 0
			result.Metadata.CharCount = 0
		}
	}()

	text, meta, err := strategy.Extract(data)
	result.Metadata.Pages = meta.Pages
	result.Metadata.Sheets = meta.Sheets
	result.Metadata.Rows = meta.Rows
	result.Metadata.WordCount = utils.WordCount(text)
	result.Metadata.CharCount = utils.CharCount(text)

	if err != nil {
		s.log.Warnf("extraction of .%s content failed: %v", ext, err)
		result.Text = "error: " + err.Error()
		result.Error = err.Error()
		return result
	}

	text, truncated := utils.Truncate(text, s.cfg.MaxTextChars)
	if truncated {
		result.Metadata.Truncated = true
		result.Metadata.WordCount = utils.WordCount(text)
		result.Metadata.CharCount = utils.CharCount(text)
	}
	result.Success = true
	result.Text = text
	return result
}

func (s *Service) resolveExtension(data []byte, fileExtension, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileExtension), "."))
	if ext != "" {
		return ext
	}
	if ext = utils.GetFileExtensionFromContentType(mimeType); ext != "" {
		return ext
	}
	if len(data) == 0 {
		return ""
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if ext = strings.TrimPrefix(m.Extension(), "."); ext != "" {
			if _, ok := s.strategies[ext]; ok {
				return ext
			}
		}
	}
	return strings.TrimPrefix(detected.Extension(), ".")
}
