package events

import (
	"context"

	"github.com/customeros/mailsift/dto"
)

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRunCompleted(context.Context, dto.RunReport) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
