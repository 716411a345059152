package relevance

import (
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/models"
)

// RelevancePolicy decides which messages are worth keeping. A message is
// relevant when any enabled rule matches.
type RelevancePolicy struct {
	CriticalCategories     []enum.EmailCategory
	ImportantPriorities    []enum.EmailPriority
	AttachmentsAreRelevant bool
}

var DefaultPolicy = RelevancePolicy{
	CriticalCategories: []enum.EmailCategory{
		enum.CategoryCriticalSafety,
		enum.CategoryRegulatoryCompliance,
		enum.CategoryOperationsMaintenance,
		enum.CategoryFinancialProcurement,
		enum.CategoryHumanResources,
	},
	ImportantPriorities:    []enum.EmailPriority{enum.PriorityUrgent, enum.PriorityHigh},
	AttachmentsAreRelevant: true,
}

func (p RelevancePolicy) Decide(c dto.Classification, attachmentCount int) bool {
	for _, critical := range p.CriticalCategories {
		if c.Category == critical {
			return true
		}
	}
	for _, important := range p.ImportantPriorities {
		if c.Priority == important {
			return true
		}
	}
	return p.AttachmentsAreRelevant && attachmentCount > 0
}

func (p RelevancePolicy) IsRelevant(c dto.Classification, attachments []*dto.Attachment) bool {
	return p.Decide(c, len(attachments))
}

// IsStoredRelevant recomputes the decision for a persisted email.
func (p RelevancePolicy) IsStoredRelevant(email *models.Email) bool {
	if email == nil {
		return false
	}
	return p.Decide(StoredClassification(email), email.AttachmentCount)
}

func IsRelevant(c dto.Classification, attachments []*dto.Attachment) bool {
	return DefaultPolicy.IsRelevant(c, attachments)
}

func IsCriticalCategory(category enum.EmailCategory) bool {
	for _, c := range DefaultPolicy.CriticalCategories {
		if c == category {
			return true
		}
	}
	return false
}

// StoredClassification maps the classification columns of an email back to
// the taxonomy. Unknown values become defaults.
func StoredClassification(email *models.Email) dto.Classification {
	result := dto.DefaultClassification(email.ClassificationReason)
	if c, ok := enum.ParseEmailCategory(string(email.Category)); ok {
		result.Category = c
	}
	if d, ok := enum.ParseDepartment(string(email.Department)); ok {
		result.Department = d
	}
	if pr, ok := enum.ParseEmailPriority(string(email.Priority)); ok {
		result.Priority = pr
	}
	return result
}
