package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsift/internal/enum"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
)

func TestReclassify_UpdatesClassificationColumns(t *testing.T) {
	h := newHarness(t, message("m1", "Invoice", pdf("invoice.pdf", "total 10")))
	ctx := context.Background()
	require.Equal(t, 1, h.svc.RunIngestion(ctx, "user-1").SavedCount)

	email, err := h.repos.EmailRepository.GetByProviderMessageID(ctx, "user-1", "m1")
	require.NoError(t, err)
	require.Equal(t, enum.CategoryCommunication, email.Category)

	// the classifier now recognises the subject
	h.svc.Classifier.(*fakeClassifier).bySubject["Invoice"] = fakeInvoiceClassification

	result, err := h.svc.Reclassify(ctx, email.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.CategoryFinancialProcurement, result.Category)

	updated, err := h.repos.EmailRepository.GetByID(ctx, email.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.CategoryFinancialProcurement, updated.Category)
	assert.Equal(t, enum.DepartmentFinance, updated.Department)
	assert.Equal(t, enum.PriorityHigh, updated.Priority)
	assert.Equal(t, "invoice overdue", updated.ClassificationReason)
	assert.Equal(t, email.Subject, updated.Subject)
	assert.Equal(t, email.BodyText, updated.BodyText)
	assert.Len(t, updated.Attachments, 1)
}

func TestReclassify_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Reclassify(context.Background(), "")
	assert.ErrorIs(t, err, mailsift_errors.ErrInvalidInput)

	_, err = h.svc.Reclassify(context.Background(), "email_missing")
	assert.ErrorIs(t, err, mailsift_errors.ErrEmailNotFound)
}

func TestUserReport_RecomputedFromStoredRows(t *testing.T) {
	h := newHarness(t,
		message("m1", "Safety Incident - Fire Hazard"),
		message("m2", "Weekly newsletter", pdf("agenda.pdf", "agenda")),
		message("m3", "Weekly newsletter"),
	)
	ctx := context.Background()
	run := h.svc.RunIngestion(ctx, "user-1")
	require.Equal(t, 2, run.SavedCount)

	report, err := h.svc.UserReport(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Relevant)
	assert.Equal(t, 1, report.Categories["CRITICAL_SAFETY"])
	assert.Equal(t, 1, report.Categories["COMMUNICATION"])
	assert.Equal(t, 1, report.Departments["Safety"])
	assert.Equal(t, 1, report.Priorities["LOW"])

	empty, err := h.svc.UserReport(ctx, "user-2")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)

	_, err = h.svc.UserReport(ctx, "")
	assert.ErrorIs(t, err, mailsift_errors.ErrInvalidInput)
}

func TestSweepStaging(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.fs.MkdirAll("/staging", 0o750))
	require.NoError(t, afero.WriteFile(h.fs, "/staging/old.pdf", []byte("old"), 0o640))
	require.NoError(t, afero.WriteFile(h.fs, "/staging/new.pdf", []byte("new"), 0o640))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, h.fs.Chtimes("/staging/old.pdf", old, old))

	result, err := h.svc.SweepStaging(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Deleted)

	exists, err := afero.Exists(h.fs, "/staging/new.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	result, err = h.svc.SweepStagingOlderThan(context.Background(), time.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
}

func TestAttachmentContent(t *testing.T) {
	h := newHarness(t, message("msg-1", "Safety Incident - Fire Hazard", pdf("report.pdf", "fire report")))
	ctx := context.Background()
	require.Equal(t, 1, h.svc.RunIngestion(ctx, "user-1").SavedCount)

	email, err := h.repos.EmailRepository.GetByProviderMessageID(ctx, "user-1", "msg-1")
	require.NoError(t, err)
	rows, err := h.repos.EmailAttachmentRepository.ListByEmail(ctx, email.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	attachment, data, err := h.svc.AttachmentContent(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", attachment.Filename)
	assert.Equal(t, []byte("fire report"), data)

	_, _, err = h.svc.AttachmentContent(ctx, "file_missing")
	assert.ErrorIs(t, err, mailsift_errors.ErrAttachmentNotFound)

	_, _, err = h.svc.AttachmentContent(ctx, "")
	assert.ErrorIs(t, err, mailsift_errors.ErrInvalidInput)
}
