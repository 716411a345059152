package dto

import "github.com/customeros/mailsift/internal/enum"

type ExtractionResult struct {
	Success  bool               `json:"success"`
	Text     string             `json:"text"`
	Error    string             `json:"error,omitempty"`
	Metadata ExtractionMetadata `json:"metadata"`
}

type ExtractionMetadata struct {
	Strategy  enum.ContentKind `json:"strategy"`
	Extension string           `json:"extension,omitempty"`
	MimeType  string           `json:"mimeType,omitempty"`
	Bytes     int              `json:"bytes"`
	WordCount int              `json:"wordCount"`
	CharCount int              `json:"charCount"`
	Pages     int              `json:"pages,omitempty"`
	Sheets    int              `json:"sheets,omitempty"`
	Rows      int              `json:"rows,omitempty"`
	Truncated bool             `json:"truncated,omitempty"`
}
