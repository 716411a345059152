package dto

import "time"

type ClassificationReport struct {
	Total       int            `json:"total"`
	Relevant    int            `json:"relevant"`
	Categories  map[string]int `json:"categories"`
	Departments map[string]int `json:"departments"`
	Priorities  map[string]int `json:"priorities"`
}

func NewClassificationReport() ClassificationReport {
	return ClassificationReport{
		Categories:  make(map[string]int),
		Departments: make(map[string]int),
		Priorities:  make(map[string]int),
	}
}

func (r *ClassificationReport) Add(c Classification, relevant bool) {
	r.Total++
	if relevant {
		r.Relevant++
	}
	r.Categories[c.Category.String()]++
	r.Departments[c.Department.String()]++
	r.Priorities[c.Priority.String()]++
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type RunReport struct {
	Success                 bool                 `json:"success"`
	RunID                   string               `json:"runId"`
	UserID                  string               `json:"userId"`
	TotalMessages           int                  `json:"totalMessages"`
	ProcessedCount          int                  `json:"processedCount"`
	FailedCount             int                  `json:"failedCount"`
	SavedCount              int                  `json:"savedCount"`
	SkippedCount            int                  `json:"skippedCount"`
	DuplicateCount          int                  `json:"duplicateCount"`
	RelevantCount           int                  `json:"relevantCount"`
	Report                  ClassificationReport `json:"report"`
	DateRange               DateRange            `json:"dateRange"`
	ReauthorizationRequired bool                 `json:"reauthorizationRequired,omitempty"`
	Error                   string               `json:"error,omitempty"`
	StartedAt               time.Time            `json:"startedAt"`
	FinishedAt              time.Time            `json:"finishedAt"`
}
