package classifier

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/tracing"
)

const defaultMaxBodyChars = 4000

type classificationService struct {
	model        interfaces.GenerativeModel
	maxBodyChars int
	log          logger.Logger
}

func NewClassificationService(model interfaces.GenerativeModel, maxBodyChars int, log logger.Logger) interfaces.ClassificationService {
	if maxBodyChars <= 0 {
		maxBodyChars = defaultMaxBodyChars
	}
	return &classificationService{
		model:        model,
		maxBodyChars: maxBodyChars,
		log:          log,
	}
}

// Classify never fails. Remote or rendering errors produce the default classification.
func (s *classificationService) Classify(ctx context.Context, message *dto.Message) dto.Classification {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClassificationService.Classify")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, message.ID)

	promptText, err := BuildPrompt(message, s.maxBodyChars)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.DefaultClassification("classification failed: " + err.Error())
	}

	answer, err := s.model.GenerateContent(ctx, promptText)
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("classification of message %s failed: %v", message.ID, err)
		return dto.DefaultClassification("classification failed: " + err.Error())
	}

	result := ParseClassification(answer)
	span.SetTag("category", result.Category.String())
	span.SetTag("priority", result.Priority.String())
	return result
}
