package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/metrics"
	"github.com/customeros/mailsift/internal/repository"
	"github.com/customeros/mailsift/internal/tracing"
	"github.com/customeros/mailsift/internal/utils"
)

const (
	promotionUploaded = "uploaded"
	promotionSkipped  = "skipped"
	promotionFailed   = "failed"
)

type persistenceService struct {
	repositories *repository.Repositories
	storage      interfaces.StorageService
	staging      interfaces.StagingService
	provider     enum.EmailProvider
	log          logger.Logger
	metrics      *metrics.Metrics
}

// NewPersistenceService wires the durable side of the pipeline. storage may be
// nil, in which case attachments are recorded without a durable copy.
func NewPersistenceService(repos *repository.Repositories, storage interfaces.StorageService, staging interfaces.StagingService, provider enum.EmailProvider, log logger.Logger, m *metrics.Metrics) interfaces.PersistenceService {
	return &persistenceService{
		repositories: repos,
		storage:      storage,
		staging:      staging,
		provider:     provider,
		log:          log,
		metrics:      m,
	}
}

func (s *persistenceService) StorageConfigured() bool {
	return s.storage != nil
}

// SaveRelevant writes the relevant records that are not stored yet. One
// record or attachment failing never affects the others.
func (s *persistenceService) SaveRelevant(ctx context.Context, userID string, records []*dto.AssembledRecord) dto.SaveResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "PersistenceService.SaveRelevant")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag(tracing.SpanTagUserId, userID)

	result := dto.SaveResult{}
	for _, record := range records {
		if record == nil || record.Message == nil {
			result.Failed++
			continue
		}
		if !record.IsRelevant {
			result.Skipped++
			continue
		}

		exists, err := s.repositories.EmailRepository.Exists(ctx, userID, record.Message.ID)
		if err != nil {
			s.log.Errorf("existence check for message %s failed: %v", record.Message.ID, err)
			result.Failed++
			continue
		}
		if exists {
			result.Duplicates++
			continue
		}

		emailID, err := s.repositories.EmailRepository.Create(ctx, toEmail(userID, s.provider, record))
		if err != nil {
			s.log.Errorf("failed to save message %s: %v", record.Message.ID, err)
			result.Failed++
			continue
		}
		result.Saved++

		for _, att := range record.Attachments {
			if att == nil {
				continue
			}
			promoted, err := s.saveAttachment(ctx, userID, emailID, record.Message.ID, att)
			if err != nil {
				s.log.Errorf("failed to save attachment %s of message %s: %v", att.Filename, record.Message.ID, err)
				result.AttachmentsFailed++
				continue
			}
			result.AttachmentsSaved++
			if promoted {
				result.AttachmentsPromoted++
			}
		}
	}

	span.LogKV("saved", result.Saved, "skipped", result.Skipped, "duplicates", result.Duplicates, "failed", result.Failed)
	return result
}

func (s *persistenceService) saveAttachment(ctx context.Context, userID, emailID, messageID string, att *dto.Attachment) (bool, error) {
	if att.UniqueFilename == "" {
		att.UniqueFilename = utils.UniqueFilename(messageID, utils.Now(), att.Filename)
	}

	row := toEmailAttachment(userID, emailID, att)
	data := s.attachmentBytes(ctx, att)
	if len(data) > 0 {
		sum := sha256.Sum256(data)
		row.ContentHash = hex.EncodeToString(sum[:])
	}

	promoted := false
	switch {
	case s.storage == nil || len(data) == 0:
		s.metrics.IncPromotion(promotionSkipped)
	default:
		key := StorageKey(userID, messageID, att.UniqueFilename)
		if err := s.storage.Upload(ctx, key, data, att.MimeType); err != nil {
			s.log.Warnf("promotion of %s failed, keeping metadata only: %v", att.Filename, err)
			s.metrics.IncPromotion(promotionFailed)
			break
		}
		row.StorageService = s.storage.Provider()
		row.StorageBucket = s.storage.Bucket()
		row.StorageKey = key
		row.PublicURL = s.storage.GetPublicURL(key)
		att.StorageKey = key
		att.PublicURL = row.PublicURL
		promoted = true
		s.metrics.IncPromotion(promotionUploaded)
	}

	if err := s.repositories.EmailAttachmentRepository.Create(ctx, row); err != nil {
		return false, errors.Wrap(err, "failed to save attachment row")
	}
	return promoted, nil
}

// attachmentBytes prefers the in-memory copy and falls back to the staged file.
func (s *persistenceService) attachmentBytes(ctx context.Context, att *dto.Attachment) []byte {
	if att.HasData() {
		return att.Data
	}
	if att.TempPath == "" || s.staging == nil {
		return nil
	}
	data, err := s.staging.Read(ctx, att.TempPath)
	if err != nil {
		s.log.Warnf("staged copy of %s unavailable: %v", att.Filename, err)
		return nil
	}
	return data
}

// StorageKey is the durable object key of a promoted attachment.
func StorageKey(userID, messageID, uniqueFilename string) string {
	return fmt.Sprintf("attachments/%s/%s/%s", userID, messageID, uniqueFilename)
}
