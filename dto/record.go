package dto

import "time"

type AssembledRecord struct {
	Message         *Message       `json:"message"`
	Classification  Classification `json:"classification"`
	Attachments     []*Attachment  `json:"attachments,omitempty"`
	IsRelevant      bool           `json:"isRelevant"`
	IsProcessed     bool           `json:"isProcessed"`
	ProcessingError string         `json:"processingError,omitempty"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
}

type SaveResult struct {
	Saved      int `json:"saved"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`

	AttachmentsSaved    int `json:"attachmentsSaved"`
	AttachmentsPromoted int `json:"attachmentsPromoted"`
	AttachmentsFailed   int `json:"attachmentsFailed"`
}
