package gmail

import (
	"context"
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/utils"
)

func (p *Provider) convert(ctx context.Context, api messagesAPI, userID string, msg *gmailapi.Message) *dto.Message {
	out := &dto.Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		UserID:   userID,
		Body:     dto.NoContentBody,
	}

	if msg.InternalDate > 0 {
		out.Date = time.UnixMilli(msg.InternalDate).UTC()
	}
	if msg.Payload == nil {
		return out
	}

	out.From = utils.CleanEmailAddress(header(msg.Payload.Headers, "From"))
	out.Subject = header(msg.Payload.Headers, "Subject")
	if out.Date.IsZero() {
		if parsed, err := mail.ParseDate(header(msg.Payload.Headers, "Date")); err == nil {
			out.Date = parsed.UTC()
		}
	}

	if body := extractBody(msg.Payload); body != "" {
		out.Body = body
	}
	out.Attachments = p.collectAttachments(ctx, api, msg.Id, msg.Payload)
	return out
}

func header(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return strings.TrimSpace(h.Value)
		}
	}
	return ""
}

// extractBody prefers the first non-blank text/plain part and falls back to
// the first text/html part with markup stripped.
func extractBody(payload *gmailapi.MessagePart) string {
	if text := findPart(payload, "text/plain"); text != "" {
		return text
	}
	if html := findPart(payload, "text/html"); html != "" {
		return utils.StripHTML(html)
	}
	return ""
}

func findPart(part *gmailapi.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.Filename == "" && strings.EqualFold(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		if data, err := decodeBase64URL(part.Body.Data); err == nil {
			if text := strings.TrimSpace(utils.ToValidUTF8(data)); text != "" {
				return text
			}
		}
	}
	for _, child := range part.Parts {
		if text := findPart(child, mimeType); text != "" {
			return text
		}
	}
	return ""
}

func (p *Provider) collectAttachments(ctx context.Context, api messagesAPI, messageID string, part *gmailapi.MessagePart) []*dto.Attachment {
	if part == nil {
		return nil
	}

	var attachments []*dto.Attachment
	if part.Filename != "" {
		attachments = append(attachments, p.fetchAttachment(ctx, api, messageID, part))
	}
	for _, child := range part.Parts {
		attachments = append(attachments, p.collectAttachments(ctx, api, messageID, child)...)
	}
	return attachments
}

func (p *Provider) fetchAttachment(ctx context.Context, api messagesAPI, messageID string, part *gmailapi.MessagePart) *dto.Attachment {
	att := &dto.Attachment{
		Filename:  part.Filename,
		MimeType:  part.MimeType,
		Extension: utils.GetFileExtension(part.Filename),
	}
	if att.Extension == "" {
		att.Extension = utils.GetFileExtensionFromContentType(part.MimeType)
	}
	if part.Body == nil {
		att.DownloadError = "attachment has no body"
		return att
	}
	att.AttachmentID = part.Body.AttachmentId
	att.Size = part.Body.Size

	encoded := part.Body.Data
	if encoded == "" && part.Body.AttachmentId != "" {
		var err error
		encoded, err = api.Attachment(ctx, messageID, part.Body.AttachmentId)
		if err != nil {
			p.log.Warnf("failed to download attachment %s of message %s: %v", part.Filename, messageID, err)
			att.DownloadError = err.Error()
			return att
		}
	}
	if encoded == "" {
		att.DownloadError = "attachment has no data"
		return att
	}

	data, err := decodeBase64URL(encoded)
	if err != nil {
		att.DownloadError = "failed to decode attachment: " + err.Error()
		return att
	}
	att.Data = data
	att.Size = int64(len(data))
	return att
}

// decodeBase64URL accepts padded and unpadded base64url.
func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(s), "="))
}
