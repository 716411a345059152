package dto

import "time"

// NoContentBody is the body of a message without a text or html part.
const NoContentBody = "(no content)"

type Message struct {
	ID          string        `json:"id"`
	ThreadID    string        `json:"threadId,omitempty"`
	UserID      string        `json:"userId"`
	From        string        `json:"from"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	Date        time.Time     `json:"date"`
	Attachments []*Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	AttachmentID   string            `json:"attachmentId,omitempty"`
	Filename       string            `json:"filename"`
	UniqueFilename string            `json:"uniqueFilename,omitempty"`
	MimeType       string            `json:"mimeType"`
	Size           int64             `json:"size"`
	Extension      string            `json:"extension"`
	Data           []byte            `json:"-"`
	DownloadError  string            `json:"downloadError,omitempty"`
	Extraction     *ExtractionResult `json:"extraction,omitempty"`
	TempPath       string            `json:"tempPath,omitempty"`
	StorageKey     string            `json:"storageKey,omitempty"`
	PublicURL      string            `json:"publicUrl,omitempty"`
}

func (a *Attachment) HasData() bool {
	return a != nil && len(a.Data) > 0
}

type StagedFile struct {
	Path       string `json:"path"`
	UniqueName string `json:"uniqueName"`
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}
