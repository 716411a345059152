package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

const maxFilenameLength = 120

// SanitizeFilename keeps a filename safe for local paths and object keys.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "attachment"
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:maxFilenameLength-len(ext)] + ext
	}
	return name
}

// UniqueFilename builds {messageId}_{unixNano}_{originalName}.
func UniqueFilename(messageID string, at time.Time, original string) string {
	return fmt.Sprintf("%s_%d_%s", SanitizeFilename(messageID), at.UnixNano(), SanitizeFilename(original))
}
