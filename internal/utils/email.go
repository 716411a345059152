package utils

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
)

var subjectPrefixRegex = regexp.MustCompile(`(?i)^((re|fwd|fw|aw|sv)(\[\d+\])?\s*:\s*)+`)

func NormalizeSubject(subject string) string {
	return strings.TrimSpace(subjectPrefixRegex.ReplaceAllString(strings.TrimSpace(subject), ""))
}

// CleanEmailAddress extracts the address from a From header value and
// normalizes it when the syntax is valid. Invalid input is returned trimmed.
func CleanEmailAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	address := raw
	if parsed, err := mail.ParseAddress(raw); err == nil {
		address = parsed.Address
	}

	validation := mailvalidate.ValidateEmailSyntax(address)
	if validation.IsValid {
		return validation.CleanEmail
	}
	return address
}

func NormalizeMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")
	return messageID
}
