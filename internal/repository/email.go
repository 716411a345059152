package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/enum"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/models"
	"github.com/customeros/mailsift/internal/tracing"
)

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) interfaces.EmailRepository {
	return &emailRepository{
		db: db,
	}
}

// Create inserts the email unless one already exists for the same user and
// provider message id, in which case the existing ID is returned.
func (r *emailRepository) Create(ctx context.Context, email *models.Email) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if email == nil || email.UserID == "" || email.ProviderMessageID == "" {
		return "", mailsift_errors.ErrInvalidInput
	}

	existing, err := r.GetByProviderMessageID(ctx, email.UserID, email.ProviderMessageID)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if existing != nil {
		span.SetTag("duplicate", true)
		return existing.ID, nil
	}

	err = r.db.WithContext(ctx).Omit("Attachments").Create(email).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race against a concurrent insert of the same message
		span.SetTag("duplicate", true)
		existing, getErr := r.GetByProviderMessageID(ctx, email.UserID, email.ProviderMessageID)
		if getErr == nil && existing != nil {
			return existing.ID, nil
		}
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	return email.ID, nil
}

// GetByID retrieves an email with its attachments
func (r *emailRepository) GetByID(ctx context.Context, id string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var email models.Email
	if err := r.db.WithContext(ctx).Preload("Attachments").Where("id = ?", id).First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) GetByProviderMessageID(ctx context.Context, userID, providerMessageID string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByProviderMessageID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var email models.Email
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_message_id = ?", userID, providerMessageID).
		First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) Exists(ctx context.Context, userID, providerMessageID string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Exists")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND provider_message_id = ?", userID, providerMessageID).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	return count > 0, nil
}

// ListByUser retrieves a user's emails, newest first. Emails without a sent
// date come last, and id breaks ties so offset pages never overlap.
func (r *emailRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Email, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.ListByUser")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var emails []*models.Email
	var count int64

	if err := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC NULLS LAST").
		Order("id").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&emails).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	return emails, count, nil
}

// UpdateClassification touches only the classification columns
func (r *emailRepository) UpdateClassification(ctx context.Context, id string, category enum.EmailCategory, department enum.Department, priority enum.EmailPriority, reason string, classifiedAt time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.UpdateClassification")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"category":              category,
			"department":            department,
			"priority":              priority,
			"classification_reason": reason,
			"classified_at":         classifiedAt,
			"updated_at":            time.Now().UTC(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mailsift_errors.ErrEmailNotFound
	}
	return nil
}
