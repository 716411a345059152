package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/models"
)

func TestEmailAttachmentRepository_CreateListAndGetData(t *testing.T) {
	db := setupTestDB(t)
	storage := newMemoryStorage()
	emails := NewEmailRepository(db)
	attachments := NewEmailAttachmentRepository(db, storage)
	ctx := context.Background()

	emailID, err := emails.Create(ctx, newEmail("user-1", "msg-1"))
	require.NoError(t, err)

	key := "attachments/user-1/msg-1/msg-1_1_report.pdf"
	require.NoError(t, storage.Upload(ctx, key, []byte("%PDF"), "application/pdf"))

	promoted := &models.EmailAttachment{
		EmailID:       emailID,
		UserID:        "user-1",
		Filename:      "report.pdf",
		ExtractedText: "Incident report",
		Metadata:      models.JSONMap{"wordCount": 2},
		StorageKey:    key,
	}
	require.NoError(t, attachments.Create(ctx, promoted))
	require.NoError(t, attachments.Create(ctx, &models.EmailAttachment{EmailID: emailID, UserID: "user-1", Filename: "notes.txt"}))

	list, err := attachments.ListByEmail(ctx, emailID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	data, err := attachments.GetData(ctx, promoted.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	email, err := emails.GetByID(ctx, emailID)
	require.NoError(t, err)
	assert.Len(t, email.Attachments, 2)
}

func TestEmailAttachmentRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	storage := newMemoryStorage()
	emails := NewEmailRepository(db)
	attachments := NewEmailAttachmentRepository(db, storage)
	ctx := context.Background()

	emailID, err := emails.Create(ctx, newEmail("user-1", "msg-1"))
	require.NoError(t, err)

	require.NoError(t, storage.Upload(ctx, "k", []byte("x"), "text/plain"))
	attachment := &models.EmailAttachment{EmailID: emailID, UserID: "user-1", StorageKey: "k"}
	require.NoError(t, attachments.Create(ctx, attachment))

	require.NoError(t, attachments.Delete(ctx, attachment.ID))
	_, err = storage.Download(ctx, "k")
	assert.Error(t, err)

	gone, err := attachments.GetByID(ctx, attachment.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.NoError(t, attachments.Delete(ctx, attachment.ID))
}

func TestEmailAttachmentRepository_WithoutStorage(t *testing.T) {
	attachments := NewEmailAttachmentRepository(setupTestDB(t), nil)

	_, err := attachments.GetData(context.Background(), "file_x")
	assert.ErrorIs(t, err, mailsift_errors.ErrStorageNotConfigured)

	err = attachments.Create(context.Background(), &models.EmailAttachment{})
	assert.ErrorIs(t, err, mailsift_errors.ErrInvalidInput)
}
