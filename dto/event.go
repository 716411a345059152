package dto

import "github.com/customeros/mailsift/internal/enum"

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	UserId      string `json:"userId"`
	Timestamp   string `json:"timestamp"`
}

type IngestionRunCompleted struct {
	RunID         string               `json:"runId"`
	UserID        string               `json:"userId"`
	Success       bool                 `json:"success"`
	TotalMessages int                  `json:"totalMessages"`
	SavedCount    int                  `json:"savedCount"`
	RelevantCount int                  `json:"relevantCount"`
	Report        ClassificationReport `json:"report"`
	Error         string               `json:"error,omitempty"`
}
