package services

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/metrics"
	"github.com/customeros/mailsift/internal/repository"
	"github.com/customeros/mailsift/services/classifier"
	"github.com/customeros/mailsift/services/events"
	"github.com/customeros/mailsift/services/extractor"
	"github.com/customeros/mailsift/services/extractor/ocr"
	"github.com/customeros/mailsift/services/mail/gmail"
	"github.com/customeros/mailsift/services/mail/imap"
	"github.com/customeros/mailsift/services/mail/tokens"
	"github.com/customeros/mailsift/services/persistence"
	"github.com/customeros/mailsift/services/pipeline"
	"github.com/customeros/mailsift/services/staging"
	"github.com/customeros/mailsift/services/storage"
)

type Services struct {
	Repositories *repository.Repositories

	StorageService     interfaces.StorageService
	StagingService     interfaces.StagingService
	ContentExtractor   interfaces.ContentExtractor
	ClassifierService  interfaces.ClassificationService
	TokenStore         interfaces.TokenStore
	GmailProvider      *gmail.Provider
	MailProvider       interfaces.MailProvider
	PersistenceService interfaces.PersistenceService
	EventPublisher     interfaces.EventPublisher
	IngestionService   *pipeline.Service

	ocrEngine interfaces.OCREngine
}

// InitServices builds every client once. Components receive their
// collaborators from here and never construct their own.
func InitServices(cfg *config.Config, db *gorm.DB, log logger.Logger, m *metrics.Metrics) (*Services, error) {
	s := &Services{}

	s.StorageService = storage.NewAttachmentStorage(cfg.R2StorageConfig)
	if s.StorageService == nil {
		log.Warn("object storage not configured, attachments are stored as metadata only")
	}
	s.Repositories = repository.InitRepositories(db, s.StorageService)

	stagingService, err := staging.NewOsStagingService(cfg.StagingConfig.Dir, log)
	if err != nil {
		return nil, err
	}
	s.StagingService = stagingService

	if cfg.ExtractionConfig.OCREnabled {
		s.ocrEngine, err = ocr.NewTesseractEngine(strings.Split(cfg.ExtractionConfig.OCRLanguages, ",")...)
		if err != nil {
			log.Warnf("OCR disabled: %v", err)
			s.ocrEngine = nil
		}
	}
	s.ContentExtractor = extractor.NewExtractor(cfg.ExtractionConfig, s.ocrEngine, log)

	s.ClassifierService = classifier.NewClassificationService(
		classifier.NewGeminiModel(cfg.GeminiConfig),
		cfg.GeminiConfig.MaxBodyChars,
		log,
	)

	providerType, err := s.initMailProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	s.PersistenceService = persistence.NewPersistenceService(s.Repositories, s.StorageService, s.StagingService, providerType, log, m)

	s.EventPublisher, err = events.NewEventPublisher(cfg.AppConfig.RabbitMQURL, log, events.DefaultPublisherConfig())
	if err != nil {
		log.Warnf("run events disabled: %v", err)
		s.EventPublisher = events.NoopPublisher{}
	}

	s.IngestionService = pipeline.NewIngestionService(cfg.IngestionConfig, cfg.StagingConfig, pipeline.Dependencies{
		Provider:    s.MailProvider,
		Classifier:  s.ClassifierService,
		Extractor:   s.ContentExtractor,
		Staging:     s.StagingService,
		Persistence: s.PersistenceService,
		Emails:      s.Repositories.EmailRepository,
		Attachments: s.Repositories.EmailAttachmentRepository,
		Events:      s.EventPublisher,
		Metrics:     m,
	}, log)

	return s, nil
}

func (s *Services) initMailProvider(cfg *config.Config, log logger.Logger) (enum.EmailProvider, error) {
	switch enum.EmailProvider(strings.ToLower(cfg.IngestionConfig.MailProvider)) {
	case enum.EmailIMAP:
		s.MailProvider = imap.NewProvider(cfg.IMAPConfig, log)
		return enum.EmailIMAP, nil
	case enum.EmailGmail, "":
		ring, err := tokens.OpenKeyring(cfg.TokenStoreConfig)
		if err != nil {
			return "", err
		}
		s.TokenStore = tokens.NewKeyringTokenStore(ring)
		s.GmailProvider = gmail.NewProvider(cfg.GmailConfig, s.TokenStore, log)
		s.MailProvider = s.GmailProvider
		return enum.EmailGmail, nil
	default:
		return "", errors.Errorf("unknown mail provider %q", cfg.IngestionConfig.MailProvider)
	}
}

func (s *Services) Close() error {
	var errs []error
	if s.EventPublisher != nil {
		if err := s.EventPublisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.ocrEngine != nil {
		if err := s.ocrEngine.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("errors closing services: %v", errs)
	}
	return nil
}
