package enum

import "strings"

type EmailProvider string

const (
	EmailGmail EmailProvider = "gmail"
	EmailIMAP  EmailProvider = "imap"
)

func (t EmailProvider) String() string {
	return string(t)
}

type EmailCategory string

const (
	CategoryCriticalSafety        EmailCategory = "CRITICAL_SAFETY"
	CategoryRegulatoryCompliance  EmailCategory = "REGULATORY_COMPLIANCE"
	CategoryOperationsMaintenance EmailCategory = "OPERATIONS_MAINTENANCE"
	CategoryFinancialProcurement  EmailCategory = "FINANCIAL_PROCUREMENT"
	CategoryHumanResources        EmailCategory = "HUMAN_RESOURCES"
	CategoryCommunication         EmailCategory = "COMMUNICATION"
	CategoryOther                 EmailCategory = "OTHER"
)

var AllEmailCategories = []EmailCategory{
	CategoryCriticalSafety,
	CategoryRegulatoryCompliance,
	CategoryOperationsMaintenance,
	CategoryFinancialProcurement,
	CategoryHumanResources,
	CategoryCommunication,
	CategoryOther,
}

func (t EmailCategory) String() string {
	return string(t)
}

// ParseEmailCategory accepts any casing and '-' or ' ' in place of '_'.
func ParseEmailCategory(s string) (EmailCategory, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	for _, c := range AllEmailCategories {
		if string(c) == normalized {
			return c, true
		}
	}
	return "", false
}

type Department string

const (
	DepartmentSafety         Department = "Safety"
	DepartmentOperations     Department = "Operations"
	DepartmentMaintenance    Department = "Maintenance"
	DepartmentEngineering    Department = "Engineering"
	DepartmentFinance        Department = "Finance"
	DepartmentProcurement    Department = "Procurement"
	DepartmentHumanResources Department = "Human Resources"
	DepartmentLegal          Department = "Legal"
	DepartmentIT             Department = "IT"
	DepartmentAdministration Department = "Administration"
)

var AllDepartments = []Department{
	DepartmentSafety,
	DepartmentOperations,
	DepartmentMaintenance,
	DepartmentEngineering,
	DepartmentFinance,
	DepartmentProcurement,
	DepartmentHumanResources,
	DepartmentLegal,
	DepartmentIT,
	DepartmentAdministration,
}

func (t Department) String() string {
	return string(t)
}

func ParseDepartment(s string) (Department, bool) {
	s = strings.TrimSpace(s)
	for _, d := range AllDepartments {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

type EmailPriority string

const (
	PriorityUrgent EmailPriority = "URGENT"
	PriorityHigh   EmailPriority = "HIGH"
	PriorityMedium EmailPriority = "MEDIUM"
	PriorityLow    EmailPriority = "LOW"
)

var AllEmailPriorities = []EmailPriority{
	PriorityUrgent,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

func (t EmailPriority) String() string {
	return string(t)
}

func ParseEmailPriority(s string) (EmailPriority, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for _, p := range AllEmailPriorities {
		if string(p) == normalized {
			return p, true
		}
	}
	return "", false
}
