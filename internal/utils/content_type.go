package utils

import (
	"mime"
	"path/filepath"
	"strings"
)

var exactContentTypes = map[string]string{
	"application/pdf":    "pdf",
	"application/json":   "json",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "xlsx",
	"application/vnd.ms-excel.sheet.macroenabled.12":                          "xlsm",
	"application/vnd.ms-excel":                                                "xls",
	"text/csv":                                                                "csv",
	"text/plain":                                                              "txt",
	"text/markdown":                                                           "md",
}

func GetFileExtensionFromContentType(contentType string) string {
	// Convert content type to lowercase for consistency
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	if ext, ok := exactContentTypes[contentType]; ok {
		return ext
	}

	switch {
	case strings.Contains(contentType, "jpeg") || strings.Contains(contentType, "jpg"):
		return "jpg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "pdf"):
		return "pdf"
	case strings.Contains(contentType, "spreadsheet") || strings.Contains(contentType, "excel"):
		return "xlsx"
	case strings.Contains(contentType, "wordprocessing") || strings.Contains(contentType, "word"):
		return "docx"
	case strings.Contains(contentType, "csv"):
		return "csv"
	case strings.Contains(contentType, "json"):
		return "json"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "tiff"):
		return "tiff"
	case strings.Contains(contentType, "bmp"):
		return "bmp"
	case strings.Contains(contentType, "text/plain"):
		return "txt"
	default:
		return ""
	}
}

// GetFileExtension returns the lower-cased extension of filename without the dot.
func GetFileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
