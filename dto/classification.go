package dto

import "github.com/customeros/mailsift/internal/enum"

type Classification struct {
	Category   enum.EmailCategory `json:"category"`
	Department enum.Department    `json:"department"`
	Priority   enum.EmailPriority `json:"priority"`
	Reason     string             `json:"reason"`
}

// DefaultClassification is used whenever the model output is unusable.
func DefaultClassification(reason string) Classification {
	return Classification{
		Category:   enum.CategoryOther,
		Department: enum.DepartmentAdministration,
		Priority:   enum.PriorityMedium,
		Reason:     reason,
	}
}
