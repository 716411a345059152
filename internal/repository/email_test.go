package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsift/internal/enum"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/models"
)

func newEmail(userID, providerMessageID string) *models.Email {
	sentAt := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	return &models.Email{
		UserID:            userID,
		ProviderMessageID: providerMessageID,
		Provider:          enum.EmailGmail,
		FromAddress:       "lead@plant.example.com",
		Subject:           "RE: Gas leak in hall 3",
		BodyText:          "Evacuated hall 3.",
		SentAt:            &sentAt,
		Category:          enum.CategoryCriticalSafety,
		Department:        enum.DepartmentSafety,
		Priority:          enum.PriorityUrgent,
		IsProcessed:       true,
	}
}

func TestEmailRepository_CreateIsIdempotent(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	firstID, err := repo.Create(ctx, newEmail("user-1", "msg-1"))
	require.NoError(t, err)
	require.NotEmpty(t, firstID)

	secondID, err := repo.Create(ctx, newEmail("user-1", "msg-1"))
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	_, total, err := repo.ListByUser(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestEmailRepository_SameMessageForDifferentUsers(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	a, err := repo.Create(ctx, newEmail("user-1", "msg-1"))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newEmail("user-2", "msg-1"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEmailRepository_CreateRejectsMissingKeys(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))

	_, err := repo.Create(context.Background(), newEmail("", "msg-1"))
	assert.ErrorIs(t, err, mailsift_errors.ErrInvalidInput)

	_, err = repo.Create(context.Background(), nil)
	assert.ErrorIs(t, err, mailsift_errors.ErrInvalidInput)
}

func TestEmailRepository_GetAndExists(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, newEmail("user-1", "msg-1"))
	require.NoError(t, err)

	email, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, email)
	assert.Equal(t, "Gas leak in hall 3", email.CleanSubject)
	assert.True(t, email.IsProcessed)

	missing, err := repo.GetByID(ctx, "email_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := repo.Exists(ctx, "user-1", "msg-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "user-1", "msg-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEmailRepository_UpdateClassification(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, newEmail("user-1", "msg-1"))
	require.NoError(t, err)

	classifiedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	err = repo.UpdateClassification(ctx, id, enum.CategoryFinancialProcurement, enum.DepartmentFinance, enum.PriorityLow, "invoice", classifiedAt)
	require.NoError(t, err)

	email, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, enum.CategoryFinancialProcurement, email.Category)
	assert.Equal(t, enum.DepartmentFinance, email.Department)
	assert.Equal(t, enum.PriorityLow, email.Priority)
	assert.Equal(t, "invoice", email.ClassificationReason)
	assert.Equal(t, "Evacuated hall 3.", email.BodyText)

	err = repo.UpdateClassification(ctx, "email_missing", enum.CategoryOther, enum.DepartmentAdministration, enum.PriorityMedium, "", classifiedAt)
	assert.ErrorIs(t, err, mailsift_errors.ErrEmailNotFound)
}

func TestEmailRepository_ListByUserPaginates(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err := repo.Create(ctx, newEmail("user-1", id))
		require.NoError(t, err)
	}

	emails, total, err := repo.ListByUser(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, emails, 2)
}

func TestEmailRepository_ListByUserPagesAreStable(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	newest := time.Date(2024, 5, 9, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		email := newEmail("user-1", fmt.Sprintf("tied-%d", i))
		switch {
		case i == 0:
			email.SentAt = &newest
		case i >= 5:
			email.SentAt = nil
		}
		_, err := repo.Create(ctx, email)
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	var ordered []*models.Email
	for offset := 0; ; offset += 2 {
		page, total, err := repo.ListByUser(ctx, "user-1", 2, offset)
		require.NoError(t, err)
		require.Equal(t, int64(7), total)
		if len(page) == 0 {
			break
		}
		for _, email := range page {
			assert.False(t, seen[email.ID], "email %s returned twice", email.ID)
			seen[email.ID] = true
			ordered = append(ordered, email)
		}
	}

	require.Len(t, ordered, 7)
	assert.Equal(t, "tied-0", ordered[0].ProviderMessageID)
	assert.Nil(t, ordered[5].SentAt)
	assert.Nil(t, ordered[6].SentAt)
	for i := 2; i < 5; i++ {
		assert.Less(t, ordered[i-1].ID, ordered[i].ID)
	}
}
