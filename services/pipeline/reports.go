package pipeline

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailsift/dto"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/models"
	"github.com/customeros/mailsift/internal/tracing"
	"github.com/customeros/mailsift/services/relevance"
)

const reportPageSize = 500

// Reclassify runs a stored email through the classifier again and updates
// only its classification columns.
func (s *Service) Reclassify(ctx context.Context, emailID string) (*dto.Classification, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.Reclassify")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, emailID)

	if emailID == "" {
		return nil, mailsift_errors.ErrInvalidInput
	}

	email, err := s.Emails.GetByID(ctx, emailID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if email == nil {
		return nil, mailsift_errors.ErrEmailNotFound
	}

	classification := s.Classifier.Classify(ctx, storedMessage(email))
	err = s.Emails.UpdateClassification(ctx, email.ID, classification.Category, classification.Department, classification.Priority, classification.Reason, s.now())
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	s.Metrics.IncClassification(classification.Category.String())

	span.LogKV("category", classification.Category.String(), "priority", classification.Priority.String())
	return &classification, nil
}

// UserReport recomputes the classification report from the stored emails of a user.
func (s *Service) UserReport(ctx context.Context, userID string) (*dto.ClassificationReport, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.UserReport")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag(tracing.SpanTagUserId, userID)

	if userID == "" {
		return nil, mailsift_errors.ErrInvalidInput
	}

	report := dto.NewClassificationReport()
	for offset := 0; ; offset += reportPageSize {
		emails, total, err := s.Emails.ListByUser(ctx, userID, reportPageSize, offset)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		for _, email := range emails {
			report.Add(relevance.StoredClassification(email), s.policy.IsStoredRelevant(email))
		}
		if len(emails) == 0 || int64(offset+len(emails)) >= total {
			break
		}
	}

	span.LogKV("total", report.Total, "relevant", report.Relevant)
	return &report, nil
}

// AttachmentContent returns a stored attachment together with its durable copy.
// Attachments that were never promoted are reported as not found.
func (s *Service) AttachmentContent(ctx context.Context, attachmentID string) (*models.EmailAttachment, []byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.AttachmentContent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, attachmentID)

	if attachmentID == "" {
		return nil, nil, mailsift_errors.ErrInvalidInput
	}

	attachment, err := s.Attachments.GetByID(ctx, attachmentID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}
	if attachment == nil || !attachment.IsPromoted() {
		return nil, nil, mailsift_errors.ErrAttachmentNotFound
	}

	data, err := s.Attachments.GetData(ctx, attachmentID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}
	return attachment, data, nil
}

func storedMessage(email *models.Email) *dto.Message {
	message := &dto.Message{
		ID:       email.ProviderMessageID,
		ThreadID: email.ThreadID,
		UserID:   email.UserID,
		From:     email.FromAddress,
		Subject:  email.Subject,
		Body:     email.BodyText,
	}
	if email.SentAt != nil {
		message.Date = *email.SentAt
	}
	for _, att := range email.Attachments {
		message.Attachments = append(message.Attachments, &dto.Attachment{
			AttachmentID:   att.AttachmentID,
			Filename:       att.Filename,
			UniqueFilename: att.UniqueFilename,
			MimeType:       att.ContentType,
			Size:           att.Size,
			Extension:      att.Extension,
			StorageKey:     att.StorageKey,
			PublicURL:      att.PublicURL,
		})
	}
	return message
}
