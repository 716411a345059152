package persistence

import (
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/models"
	"github.com/customeros/mailsift/internal/utils"
)

func toEmail(userID string, provider enum.EmailProvider, record *dto.AssembledRecord) *models.Email {
	msg := record.Message
	classifiedAt := utils.Now()

	email := &models.Email{
		UserID:               userID,
		ProviderMessageID:    msg.ID,
		Provider:             provider,
		ThreadID:             utils.StripNUL(msg.ThreadID),
		FromAddress:          utils.StripNUL(msg.From),
		Subject:              utils.StripNUL(msg.Subject),
		BodyText:             utils.StripNUL(msg.Body),
		Category:             record.Classification.Category,
		Department:           record.Classification.Department,
		Priority:             record.Classification.Priority,
		ClassificationReason: utils.StripNUL(record.Classification.Reason),
		ClassifiedAt:         &classifiedAt,
		AttachmentCount:      len(record.Attachments),
		Deadline:             record.Deadline,
		IsProcessed:          record.IsProcessed,
		ProcessingError:      utils.StripNUL(record.ProcessingError),
	}
	if !msg.Date.IsZero() {
		sentAt := msg.Date.UTC()
		email.SentAt = &sentAt
	}
	return email
}

func toEmailAttachment(userID, emailID string, att *dto.Attachment) *models.EmailAttachment {
	row := &models.EmailAttachment{
		EmailID:        emailID,
		UserID:         userID,
		AttachmentID:   att.AttachmentID,
		Filename:       utils.StripNUL(att.Filename),
		UniqueFilename: att.UniqueFilename,
		ContentType:    att.MimeType,
		Extension:      att.Extension,
		Size:           att.Size,
		DownloadError:  utils.StripNUL(att.DownloadError),
	}
	if att.Extraction != nil {
		row.ExtractionSuccess = att.Extraction.Success
		row.ExtractedText = utils.StripNUL(att.Extraction.Text)
		row.ExtractionError = utils.StripNUL(att.Extraction.Error)
		row.Metadata = extractionMetadata(att.Extraction.Metadata)
	}
	return row
}

func extractionMetadata(meta dto.ExtractionMetadata) models.JSONMap {
	out := models.JSONMap{
		"strategy":  meta.Strategy.String(),
		"bytes":     meta.Bytes,
		"wordCount": meta.WordCount,
		"charCount": meta.CharCount,
	}
	if meta.Pages > 0 {
		out["pages"] = meta.Pages
	}
	if meta.Sheets > 0 {
		out["sheets"] = meta.Sheets
	}
	if meta.Rows > 0 {
		out["rows"] = meta.Rows
	}
	if meta.Truncated {
		out["truncated"] = true
	}
	return out
}
