package imap

import (
	"bytes"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/utils"
)

// ParseMessage converts a raw RFC 822 message into a dto.Message.
func ParseMessage(raw []byte, userID string) (*dto.Message, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse message")
	}

	msg := &dto.Message{
		ID:      utils.NormalizeMessageID(env.GetHeader("Message-ID")),
		UserID:  userID,
		From:    utils.CleanEmailAddress(env.GetHeader("From")),
		Subject: env.GetHeader("Subject"),
		Body:    dto.NoContentBody,
	}
	if refs := strings.Fields(env.GetHeader("References")); len(refs) > 0 {
		msg.ThreadID = utils.NormalizeMessageID(refs[0])
	}
	if date, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
		msg.Date = date.UTC()
	}

	if text := strings.TrimSpace(env.Text); text != "" {
		msg.Body = text
	} else if env.HTML != "" {
		if text := utils.StripHTML(env.HTML); text != "" {
			msg.Body = text
		}
	}

	for _, part := range append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...) {
		if part.FileName == "" {
			continue
		}
		att := &dto.Attachment{
			AttachmentID: part.PartID,
			Filename:     part.FileName,
			MimeType:     part.ContentType,
			Extension:    utils.GetFileExtension(part.FileName),
			Data:         part.Content,
			Size:         int64(len(part.Content)),
		}
		if att.Extension == "" {
			att.Extension = utils.GetFileExtensionFromContentType(part.ContentType)
		}
		if len(part.Content) == 0 {
			att.DownloadError = "attachment has no data"
		}
		msg.Attachments = append(msg.Attachments, att)
	}

	return msg, nil
}

func fallbackID(folder string, uid uint32) string {
	return fmt.Sprintf("imap-%s-%d", strings.ToLower(folder), uid)
}
