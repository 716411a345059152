package relevance

import (
	"github.com/customeros/mailsift/dto"
)

// Assemble merges a message with its classification and processed attachments.
// When processingErr is set the classification falls back to defaults and the
// record is marked unprocessed.
func (p RelevancePolicy) Assemble(message *dto.Message, classification dto.Classification, attachments []*dto.Attachment, processingErr error) *dto.AssembledRecord {
	record := &dto.AssembledRecord{
		Message:        message,
		Classification: classification,
		Attachments:    attachments,
		IsProcessed:    true,
	}

	if processingErr != nil {
		record.Classification = dto.DefaultClassification("processing failed: " + processingErr.Error())
		record.IsProcessed = false
		record.ProcessingError = processingErr.Error()
	}

	record.IsRelevant = p.IsRelevant(record.Classification, attachments)

	texts := make([]string, 0, len(attachments)+2)
	if message != nil {
		texts = append(texts, message.Subject, message.Body)
	}
	for _, att := range attachments {
		if att != nil && att.Extraction != nil && att.Extraction.Success {
			texts = append(texts, att.Extraction.Text)
		}
	}
	record.Deadline = EarliestDeadline(texts...)

	return record
}

func Assemble(message *dto.Message, classification dto.Classification, attachments []*dto.Attachment, processingErr error) *dto.AssembledRecord {
	return DefaultPolicy.Assemble(message, classification, attachments, processingErr)
}
