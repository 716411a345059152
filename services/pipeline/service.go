package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/metrics"
	"github.com/customeros/mailsift/internal/tracing"
	"github.com/customeros/mailsift/internal/utils"
	"github.com/customeros/mailsift/services/relevance"
)

const (
	defaultMaxMessages  = 5
	defaultLookbackDays = 7
	defaultStagingHours = 24
)

// Dependencies are the collaborators of a pipeline run, built once at start-up.
type Dependencies struct {
	Provider    interfaces.MailProvider
	Classifier  interfaces.ClassificationService
	Extractor   interfaces.ContentExtractor
	Staging     interfaces.StagingService
	Persistence interfaces.PersistenceService
	Emails      interfaces.EmailRepository
	Attachments interfaces.EmailAttachmentRepository
	Events      interfaces.EventPublisher
	Metrics     *metrics.Metrics
}

type Service struct {
	Dependencies
	maxMessages   int
	lookbackDays  int
	stagingMaxAge time.Duration
	policy        relevance.RelevancePolicy
	log           logger.Logger
	now           func() time.Time
}

func NewIngestionService(ingestion *config.IngestionConfig, staging *config.StagingConfig, deps Dependencies, log logger.Logger) *Service {
	s := &Service{
		Dependencies:  deps,
		maxMessages:   defaultMaxMessages,
		lookbackDays:  defaultLookbackDays,
		stagingMaxAge: defaultStagingHours * time.Hour,
		policy:        relevance.DefaultPolicy,
		log:           log,
		now:           utils.Now,
	}
	if ingestion != nil {
		if ingestion.MaxMessages > 0 {
			s.maxMessages = ingestion.MaxMessages
		}
		if ingestion.LookbackDays > 0 {
			s.lookbackDays = ingestion.LookbackDays
		}
	}
	if staging != nil && staging.MaxAgeHours > 0 {
		s.stagingMaxAge = time.Duration(staging.MaxAgeHours) * time.Hour
	}
	return s
}

// DateRange is the inclusive whole-day window ending today (UTC).
func (s *Service) DateRange() dto.DateRange {
	end := utils.StartOfDay(s.now())
	return dto.DateRange{
		Start: end.AddDate(0, 0, -s.lookbackDays),
		End:   end,
	}
}

// RunIngestion fetches, classifies, extracts and persists one user's recent
// mail. It never panics; failures show up in the returned report.
func (s *Service) RunIngestion(ctx context.Context, userID string) dto.RunReport {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.RunIngestion")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag(tracing.SpanTagUserId, userID)

	report := dto.RunReport{
		RunID:     uuid.NewString(),
		UserID:    userID,
		Report:    dto.NewClassificationReport(),
		DateRange: s.DateRange(),
		StartedAt: s.now(),
	}
	tracing.TagEntity(span, report.RunID)
	ctx = utils.SetRunIdInContext(utils.SetUserIdInContext(ctx, userID), report.RunID)

	defer func() {
		if r := recover(); r != nil {
			report.Success = false
			report.Error = fmt.Sprintf("run aborted: %v", r)
			s.log.Errorf("ingestion run %s panicked: %v", report.RunID, r)
		}
		s.finish(ctx, span, &report)
	}()

	if userID == "" {
		report.Error = mailsift_errors.ErrInvalidInput.Error()
		return report
	}

	messages, err := s.Provider.FetchMessages(ctx, userID, report.DateRange.Start, report.DateRange.End, s.maxMessages)
	if err != nil {
		tracing.TraceErr(span, err)
		report.ReauthorizationRequired = errors.Is(err, mailsift_errors.ErrReauthorizationRequired)
		report.Error = err.Error()
		s.log.Warnf("ingestion run %s for user %s could not list messages: %v", report.RunID, userID, err)
		return report
	}
	report.TotalMessages = len(messages)

	records := make([]*dto.AssembledRecord, 0, len(messages))
	for _, message := range messages {
		if message == nil {
			continue
		}
		if ctx.Err() != nil {
			report.Error = ctx.Err().Error()
			break
		}

		record := s.processMessage(ctx, message)
		records = append(records, record)

		if record.IsProcessed {
			report.ProcessedCount++
		} else {
			report.FailedCount++
		}
		if record.IsRelevant {
			report.RelevantCount++
		}
		report.Report.Add(record.Classification, record.IsRelevant)
		s.Metrics.IncClassification(record.Classification.Category.String())
	}

	saved := s.Persistence.SaveRelevant(ctx, userID, records)
	report.SavedCount = saved.Saved
	report.SkippedCount = saved.Skipped
	report.DuplicateCount = saved.Duplicates
	report.FailedCount += saved.Failed

	s.Metrics.IncMessages("saved", saved.Saved)
	s.Metrics.IncMessages("skipped", saved.Skipped)
	s.Metrics.IncMessages("duplicate", saved.Duplicates)
	s.Metrics.IncMessages("failed", saved.Failed)

	report.Success = report.Error == ""
	return report
}

func (s *Service) finish(ctx context.Context, span opentracing.Span, report *dto.RunReport) {
	report.FinishedAt = s.now()
	s.Metrics.ObserveRun(report.Success, report.StartedAt)

	span.LogKV("success", report.Success, "total", report.TotalMessages, "saved", report.SavedCount, "relevant", report.RelevantCount)
	s.log.Infof("ingestion run %s for user %s finished: success=%t total=%d saved=%d skipped=%d duplicates=%d relevant=%d",
		report.RunID, report.UserID, report.Success, report.TotalMessages, report.SavedCount, report.SkippedCount, report.DuplicateCount, report.RelevantCount)

	if s.Events == nil {
		return
	}
	if err := s.Events.PublishRunCompleted(ctx, *report); err != nil {
		s.log.Warnf("run completed event for %s not published: %v", report.RunID, err)
	}
}

// processMessage runs one message through classification, extraction and
// assembly. A panic anywhere yields a default record instead.
func (s *Service) processMessage(ctx context.Context, message *dto.Message) (record *dto.AssembledRecord) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.processMessage")
	defer span.Finish()
	tracing.TagEntity(span, message.ID)

	defer func() {
		if r := recover(); r != nil {
			err := errors.Errorf("panic: %v", r)
			tracing.TraceErr(span, err)
			s.log.Errorf("processing of message %s failed: %v", message.ID, err)
			record = s.policy.Assemble(message, dto.Classification{}, message.Attachments, err)
		}
	}()

	classification := s.Classifier.Classify(ctx, message)
	attachments := s.processAttachments(ctx, message)

	return s.policy.Assemble(message, classification, attachments, nil)
}

func (s *Service) processAttachments(ctx context.Context, message *dto.Message) []*dto.Attachment {
	attachments := make([]*dto.Attachment, 0, len(message.Attachments))
	for _, att := range message.Attachments {
		if att == nil {
			continue
		}
		attachments = append(attachments, att)

		if !att.HasData() {
			reason := att.DownloadError
			if reason == "" {
				reason = mailsift_errors.ErrNoContent.Error()
			}
			att.Extraction = &dto.ExtractionResult{Text: "error: " + reason, Error: reason}
			s.Metrics.IncExtraction("download", false)
			continue
		}

		staged := s.stage(ctx, att, message.ID)

		result := s.Extractor.ExtractContent(att.Data, att.Extension, att.MimeType)
		att.Extraction = &result
		s.Metrics.IncExtraction(result.Metadata.Strategy.String(), result.Success)
		if !result.Success {
			s.log.Warnf("extraction of %s in message %s failed: %s", att.Filename, message.ID, result.Error)
		}

		// the staged copy is the source for promotion from here on
		if staged {
			att.Data = nil
		}
	}
	return attachments
}

func (s *Service) stage(ctx context.Context, att *dto.Attachment, messageID string) bool {
	if s.Staging == nil {
		return false
	}
	staged, err := s.Staging.Stage(ctx, att, messageID)
	if err != nil {
		s.log.Warnf("staging of %s in message %s failed: %v", att.Filename, messageID, err)
		return false
	}
	att.TempPath = staged.Path
	att.UniqueFilename = staged.UniqueName
	return true
}

// SweepStaging deletes staged files older than the configured age.
func (s *Service) SweepStaging(ctx context.Context) (dto.SweepResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.SweepStaging")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if s.Staging == nil {
		return dto.SweepResult{}, nil
	}

	result, err := s.Staging.Sweep(ctx, s.stagingMaxAge)
	s.Metrics.AddSwept(result.Deleted)
	if err != nil {
		tracing.TraceErr(span, err)
		return result, err
	}
	span.LogKV("scanned", result.Scanned, "deleted", result.Deleted, "failed", result.Failed)
	return result, nil
}

// SweepStagingOlderThan is SweepStaging with an explicit age.
func (s *Service) SweepStagingOlderThan(ctx context.Context, maxAge time.Duration) (dto.SweepResult, error) {
	if maxAge <= 0 {
		return s.SweepStaging(ctx)
	}
	clone := *s
	clone.stagingMaxAge = maxAge
	return clone.SweepStaging(ctx)
}
